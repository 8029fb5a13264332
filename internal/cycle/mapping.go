package cycle

import "strings"

// frequencyKeywords is checked top to bottom and the first hit wins. The order is
// load-bearing: existing suggested_frequency data was produced with it, which is why
// "bi-weekly" lands on WEEKLY (it contains "weekly").
var frequencyKeywords = []struct {
	freq     Frequency
	keywords []string
}{
	{Daily, []string{"daily", "every day", "each day"}},
	{Weekly, []string{"weekly", "every week", "once a week"}},
	{Biweekly, []string{"bi-weekly", "biweekly", "every two weeks", "fortnightly"}},
	{Monthly, []string{"monthly", "every month", "once a month", "per month"}},
	{Quarterly, []string{"quarterly", "every quarter", "every 3 months", "three months", "after vacancy", "post-infection"}},
	{Yearly, []string{"yearly", "annually", "every year", "once a year"}},
	{Custom, []string{"as needed", "when required", "irregular", "variable"}},
}

// MapFrequencyStringToEnum maps a free-text frequency description (as produced by
// document analysis) to a Frequency. Empty or unrecognised text yields WEEKLY.
func MapFrequencyStringToEnum(text string) Frequency {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return DefaultFrequency
	}
	for _, group := range frequencyKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(text, kw) {
				return group.freq
			}
		}
	}
	return DefaultFrequency
}

// TaskFrequency is anything carrying an optional free-text frequency.
type TaskFrequency interface {
	FrequencyText() string
}

// InferFrequencyFromTasks returns the most common mapped frequency across tasks.
// Ties go to the value that was seen first; no tasks yields WEEKLY.
func InferFrequencyFromTasks[T TaskFrequency](tasks []T) Frequency {
	if len(tasks) == 0 {
		return DefaultFrequency
	}
	counts := make(map[Frequency]int)
	var order []Frequency
	for _, t := range tasks {
		f := MapFrequencyStringToEnum(t.FrequencyText())
		if counts[f] == 0 {
			order = append(order, f)
		}
		counts[f]++
	}

	best, top := DefaultFrequency, 0
	for _, f := range order {
		if counts[f] > top {
			best, top = f, counts[f]
		}
	}
	return best
}

// SuggestFrequency picks the advisory frequency for a schedule: the detected text
// when there is any, otherwise the task consensus.
func SuggestFrequency[T TaskFrequency](detected string, tasks []T) Frequency {
	if strings.TrimSpace(detected) != "" {
		return MapFrequencyStringToEnum(detected)
	}
	return InferFrequencyFromTasks(tasks)
}

// Text adapts a plain string to TaskFrequency.
type Text string

func (t Text) FrequencyText() string { return string(t) }
