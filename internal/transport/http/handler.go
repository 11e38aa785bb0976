package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"exam-scoring-service/internal/app"
	"exam-scoring-service/internal/domain"
	"exam-scoring-service/internal/scoring"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Headers set by the upstream auth layer to identify the caller.
const (
	headerParticipantID    = "X-Participant-ID"
	headerParticipantName  = "X-Participant-Name"
	headerParticipantEmail = "X-Participant-Email"
	headerParticipantPhone = "X-Participant-Phone"
)

// Handler exposes the scoring use cases as JSON endpoints.
type Handler struct {
	service  *app.ExamService
	validate *validator.Validate
}

func NewHandler(service *app.ExamService) *Handler {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Handler{service: service, validate: v}
}

// Register mounts the routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /exams/{examID}/sections/{sectionID}/attempts", h.StartAttempt)
	mux.HandleFunc("PUT /attempts/{attemptID}/answers", h.SubmitAnswers)
	mux.HandleFunc("POST /attempts/{attemptID}/submit", h.SubmitExam)
	mux.HandleFunc("POST /attempts/{attemptID}/evaluations", h.Evaluate)
	mux.HandleFunc("GET /exams/{examID}/results", h.Results)
}

type answerItem struct {
	QuestionID       string  `json:"question_id" validate:"required"`
	OptionID         *string `json:"option_id"`
	SubjectiveAnswer *string `json:"subjective_answer"`
}

type answersRequest struct {
	Answers []answerItem `json:"answers" validate:"required,min=1"`
}

type evaluationItem struct {
	StudentAnswerID string           `json:"student_answer_id" validate:"required"`
	MarksObtained   *decimal.Decimal `json:"marks_obtained" validate:"required"`
}

type evaluationRequest struct {
	Evaluations []evaluationItem `json:"evaluations" validate:"required,min=1"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func (h *Handler) StartAttempt(w http.ResponseWriter, r *http.Request) {
	attempt, err := h.service.StartAttempt(r.Context(), r.PathValue("examID"), r.PathValue("sectionID"), participantFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, scoring.DescribeAttempt(attempt))
}

func (h *Handler) SubmitAnswers(w http.ResponseWriter, r *http.Request) {
	var req answersRequest
	if !h.decode(w, r, &req) {
		return
	}
	var rejected []domain.ItemError
	positions := make([]int, 0, len(req.Answers))
	inputs := make([]domain.AnswerInput, 0, len(req.Answers))
	for i, a := range req.Answers {
		if err := h.validate.Struct(a); err != nil {
			rejected = append(rejected, domain.ItemError{Index: i, Message: itemMessage(err)})
			continue
		}
		positions = append(positions, i)
		inputs = append(inputs, domain.AnswerInput{
			QuestionID:       a.QuestionID,
			OptionID:         a.OptionID,
			SubjectiveAnswer: a.SubjectiveAnswer,
		})
	}
	result, err := h.service.SubmitAnswers(r.Context(), r.PathValue("attemptID"), participantFrom(r), inputs)
	if err != nil {
		writeError(w, err)
		return
	}
	result.Errors = mergeItemErrors(rejected, result.Errors, positions)
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) SubmitExam(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.SubmitExam(r.Context(), r.PathValue("attemptID"), participantFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluationRequest
	if !h.decode(w, r, &req) {
		return
	}
	var rejected []domain.ItemError
	positions := make([]int, 0, len(req.Evaluations))
	evals := make([]domain.EvaluationInput, 0, len(req.Evaluations))
	for i, e := range req.Evaluations {
		if err := h.validate.Struct(e); err != nil {
			rejected = append(rejected, domain.ItemError{Index: i, AnswerID: e.StudentAnswerID, Message: itemMessage(err)})
			continue
		}
		positions = append(positions, i)
		evals = append(evals, domain.EvaluationInput{AnswerID: e.StudentAnswerID, MarksObtained: *e.MarksObtained})
	}
	summary, err := h.service.EvaluateSubjective(r.Context(), r.PathValue("attemptID"), evals)
	if err != nil {
		writeError(w, err)
		return
	}
	summary.Errors = mergeItemErrors(rejected, summary.Errors, positions)
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) Results(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.ExamResults(r.Context(), r.PathValue("examID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "invalid request body"})
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: validationMessage(err)})
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fe.Namespace()+" failed "+fe.Tag())
	}
	return strings.Join(parts, "; ")
}

// itemMessage names the offending fields of one batch item.
func itemMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			parts = append(parts, fe.Field()+" is required")
			continue
		}
		parts = append(parts, fe.Field()+" failed "+fe.Tag())
	}
	return strings.Join(parts, "; ")
}

// mergeItemErrors maps service item indexes back to request positions and
// merges them with the items rejected before the call, ordered by position.
func mergeItemErrors(rejected, reported []domain.ItemError, positions []int) []domain.ItemError {
	out := make([]domain.ItemError, 0, len(rejected)+len(reported))
	out = append(out, rejected...)
	for _, e := range reported {
		if e.Index >= 0 && e.Index < len(positions) {
			e.Index = positions[e.Index]
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

func participantFrom(r *http.Request) domain.Participant {
	return domain.Participant{
		ID:    r.Header.Get(headerParticipantID),
		Name:  r.Header.Get(headerParticipantName),
		Email: r.Header.Get(headerParticipantEmail),
		Phone: r.Header.Get(headerParticipantPhone),
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrExamNotFound),
		errors.Is(err, domain.ErrSectionNotFound),
		errors.Is(err, domain.ErrAttemptNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrPrecondition):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
		msg = "internal error"
		if errors.Is(err, domain.ErrEvaluationFailed) {
			msg = domain.ErrEvaluationFailed.Error()
		}
	}
	writeJSON(w, status, errorPayload{Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("write response")
	}
}
