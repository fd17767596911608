package timeline

// Summary condenses a window of per-day not-afk totals
type Summary struct {
	Days                   int
	DaysWithData           int
	TotalNotAfkSeconds     float64
	AvgNotAfkSecondsPerDay float64
}

// WeekSummary counts days whose activity clears minActiveSeconds and
// averages over those qualifying days only. The total still sums every
// day, so sub-threshold scraps are not lost from the headline number.
func WeekSummary(notAfkSecondsByDay []float64, minActiveSeconds float64) Summary {
	if minActiveSeconds <= 0 {
		minActiveSeconds = DefaultMinActiveSeconds
	}

	s := Summary{Days: len(notAfkSecondsByDay)}
	var qualifying float64

	for _, secs := range notAfkSecondsByDay {
		s.TotalNotAfkSeconds += secs
		if secs >= minActiveSeconds {
			s.DaysWithData++
			qualifying += secs
		}
	}

	if s.DaysWithData > 0 {
		s.AvgNotAfkSecondsPerDay = qualifying / float64(s.DaysWithData)
	}
	return s
}
