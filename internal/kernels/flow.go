package kernels

// RetailContrarianResult reports retail-investor positioning vs its own
// recent history.
type RetailContrarianResult struct {
	Computable  bool
	ZScore      float64
	Intensity   float64
	Signal      string
}

// RetailContrarian computes the 20-day retail intensity and its Z-score
// against the trailing 60-day distribution of 20-day intensities, per
// SPEC_FULL.md §4.1.
func RetailContrarian(flows []InvestorFlowDay, avgDailyTradedValue float64) RetailContrarianResult {
	if len(flows) < 80 || isMissing(avgDailyTradedValue) || avgDailyTradedValue <= 0 {
		return RetailContrarianResult{Computable: false}
	}

	intensity20 := func(window []InvestorFlowDay) float64 {
		var s float64
		for _, d := range window {
			if !isMissing(d.IndividualNet) {
				s += d.IndividualNet
			}
		}
		return s / (avgDailyTradedValue * 20)
	}

	current := intensity20(flows[len(flows)-20:])

	rolling := make([]float64, 0, 60)
	for i := len(flows) - 80; i <= len(flows)-20; i++ {
		if i < 0 {
			continue
		}
		end := i + 20
		if end > len(flows) {
			break
		}
		rolling = append(rolling, intensity20(flows[i:end]))
	}
	if len(rolling) < 2 {
		return RetailContrarianResult{Computable: false}
	}

	m := mean(rolling)
	sd := stddev(rolling)
	var z float64
	if isMissing(sd) || sd == 0 {
		z = 0
	} else {
		z = (current - m) / sd
	}

	signal := "neutral"
	if z > 2 {
		signal = "extreme_buying"
	} else if z < -2 {
		signal = "extreme_selling"
	}

	return RetailContrarianResult{Computable: true, ZScore: z, Intensity: current, Signal: signal}
}

// SmartDumbResult reports the smart-money/dumb-money divergence.
type SmartDumbResult struct {
	Computable bool
	SmartRatio float64
	DumbRatio  float64
	Divergence float64
	Signal     string
}

// SmartDumbDivergence per SPEC_FULL.md §4.1: smart = institution + foreign +
// pension; dumb = individual; both normalised by avgDailyTradedValue*days.
func SmartDumbDivergence(flows []InvestorFlowDay, avgDailyTradedValue float64) SmartDumbResult {
	if len(flows) == 0 || isMissing(avgDailyTradedValue) || avgDailyTradedValue <= 0 {
		return SmartDumbResult{Computable: false}
	}
	var smart, dumb float64
	for _, d := range flows {
		if !isMissing(d.InstitutionNet) {
			smart += d.InstitutionNet
		}
		if !isMissing(d.ForeignNet) {
			smart += d.ForeignNet
		}
		if !isMissing(d.PensionNet) {
			smart += d.PensionNet
		}
		if !isMissing(d.IndividualNet) {
			dumb += d.IndividualNet
		}
	}
	denom := avgDailyTradedValue * float64(len(flows))
	if denom == 0 {
		return SmartDumbResult{Computable: false}
	}
	smartRatio := smart / denom
	dumbRatio := dumb / denom
	divergence := smartRatio - dumbRatio

	signal := "mixed"
	if divergence > 0.5 {
		signal = "smart_accumulation"
	} else if divergence < -0.5 {
		signal = "smart_distribution"
	}

	return SmartDumbResult{Computable: true, SmartRatio: smartRatio, DumbRatio: dumbRatio, Divergence: divergence, Signal: signal}
}

// MomentumShiftResult reports whether institutional-class flow direction has
// reversed between a short and long window.
type MomentumShiftResult struct {
	Computable bool
	Score      float64
	Signal     string
}

// MomentumShift per SPEC_FULL.md §4.1 over {institution, foreign, pension}.
func MomentumShift(flows []InvestorFlowDay, shortDays, longDays int) MomentumShiftResult {
	if shortDays <= 0 {
		shortDays = 5
	}
	if longDays <= 0 {
		longDays = 60
	}
	if len(flows) < longDays {
		return MomentumShiftResult{Computable: false}
	}
	longWindow := flows[len(flows)-longDays:]
	shortWindow := flows[len(flows)-shortDays:]

	classes := []string{"institution", "foreign", "pension"}
	subScores := make([]float64, 0, len(classes))

	for _, class := range classes {
		var shortSum, longSum float64
		for _, d := range shortWindow {
			v := d.byType(class)
			if !isMissing(v) {
				shortSum += v
			}
		}
		for _, d := range longWindow {
			v := d.byType(class)
			if !isMissing(v) {
				longSum += v
			}
		}
		if longSum == 0 {
			continue
		}
		shortSign := sign(shortSum)
		longSign := sign(longSum)
		reversal := shortSign != longSign && shortSign != 0

		longPerDay := absF(longSum) / float64(longDays)
		var strength float64
		if longPerDay == 0 {
			strength = 0
		} else {
			strength = minF(2.0, (absF(shortSum)/float64(shortDays))/longPerDay)
		}

		subScore := 0.0
		if reversal {
			subScore = 50 * strength
		}
		subScores = append(subScores, subScore)
	}

	if len(subScores) == 0 {
		return MomentumShiftResult{Computable: false}
	}

	overall := 0.6*maxOf(subScores) + 0.4*mean(subScores)
	signal := "neutral"
	if overall >= 50 {
		signal = "shift_detected"
	}
	return MomentumShiftResult{Computable: true, Score: overall, Signal: signal}
}

func sign(x float64) int {
	if x > 0 {
		return 1
	}
	if x < 0 {
		return -1
	}
	return 0
}
