package scoring

import (
	"fmt"
	"sort"

	"exam-scoring-service/internal/domain"
	"github.com/shopspring/decimal"
)

// BuildRankedResults groups evaluated attempts by participant, totals their
// section marks and assigns competition ranks (1, 1, 3, ...). Callers must
// pass only evaluated attempts and must not pass an empty cohort.
func BuildRankedResults(exam domain.Exam, attempts []domain.Attempt) (domain.RankedResultSet, error) {
	if len(attempts) == 0 {
		return domain.RankedResultSet{}, fmt.Errorf("%w: exam %s has no attempts to rank", domain.ErrPrecondition, exam.ID)
	}

	type group struct {
		result    domain.RankedResult
		sequences map[string]int
	}
	groups := make([]*group, 0)
	byKey := make(map[string]*group)

	for _, attempt := range attempts {
		section, ok := exam.Section(attempt.SectionID)
		if !ok {
			return domain.RankedResultSet{}, fmt.Errorf("%w: attempt %s references unknown section %s", domain.ErrPrecondition, attempt.ID, attempt.SectionID)
		}
		key := groupKey(exam.Mode, attempt.Participant)
		if key == "" {
			return domain.RankedResultSet{}, fmt.Errorf("%w: attempt %s has no participant identity", domain.ErrPrecondition, attempt.ID)
		}

		g, ok := byKey[key]
		if !ok {
			// contact details come from the first attempt seen for the participant
			g = &group{
				result: domain.RankedResult{
					GroupKey:    key,
					Participant: attempt.Participant,
					SectionWise: make(map[string]domain.SectionMark),
				},
				sequences: make(map[string]int),
			}
			byKey[key] = g
			groups = append(groups, g)
		}

		if seq, seen := g.sequences[section.Title]; seen && seq > attempt.Sequence {
			continue
		}
		g.sequences[section.Title] = attempt.Sequence
		g.result.SectionWise[section.Title] = domain.SectionMark{
			Marks:       attempt.ObtainedMarks,
			AttemptID:   attempt.ID,
			SubmittedAt: attempt.SubmittedAt,
		}
	}

	results := make([]domain.RankedResult, 0, len(groups))
	for _, g := range groups {
		total := decimal.Zero
		for _, mark := range g.result.SectionWise {
			total = total.Add(mark.Marks)
		}
		g.result.TotalMarks = total.Round(2)
		results = append(results, g.result)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if c := results[i].TotalMarks.Cmp(results[j].TotalMarks); c != 0 {
			return c > 0
		}
		return results[i].GroupKey < results[j].GroupKey
	})
	AssignRanks(results)

	return domain.RankedResultSet{
		Exam:          exam,
		SectionTotals: SectionTotals(exam),
		Results:       results,
		Statistics:    statistics(results),
	}, nil
}

// AssignRanks applies competition ranking to results sorted by total
// descending: equal totals share a rank and the next distinct total skips
// ahead by the size of the tie group.
func AssignRanks(results []domain.RankedResult) {
	rank, sameRank := 0, 0
	for i := range results {
		switch {
		case i == 0:
			rank, sameRank = 1, 1
		case results[i].TotalMarks.Equal(results[i-1].TotalMarks):
			sameRank++
		default:
			rank += sameRank
			sameRank = 1
		}
		results[i].Rank = rank
	}
}

// SectionTotals maps every section title to its sum of question full marks.
func SectionTotals(exam domain.Exam) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal, len(exam.Sections))
	for _, s := range exam.Sections {
		totals[s.Title] = s.TotalMarks()
	}
	return totals
}

func statistics(results []domain.RankedResult) domain.Statistics {
	sum := decimal.Zero
	highest, lowest := results[0].TotalMarks, results[0].TotalMarks
	for _, r := range results {
		sum = sum.Add(r.TotalMarks)
		highest = decimal.Max(highest, r.TotalMarks)
		lowest = decimal.Min(lowest, r.TotalMarks)
	}
	return domain.Statistics{
		Average: sum.Div(decimal.NewFromInt(int64(len(results)))).Round(2),
		Highest: highest,
		Lowest:  lowest,
	}
}

func groupKey(mode domain.ParticipationMode, p domain.Participant) string {
	if mode == domain.ParticipationPublic {
		return p.Email
	}
	return p.ID
}
