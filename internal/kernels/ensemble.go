package kernels

// EnsembleResult is the pooled multi-model simulation output.
type EnsembleResult struct {
	Horizons       map[int]HorizonStats
	TargetProbs    map[float64]map[int]float64 // multiplier -> horizon -> P(terminal > base*multiplier)
	ModelBreakdown *ModelBreakdown             // nil when only one model succeeded
}

// ModelBreakdown reports per-model transparency for the ensemble.
type ModelBreakdown struct {
	ModelScores  []ModelScore
	ModelWeights map[string]float64
	Method       string
}

type ModelScore struct {
	Model  string
	Score  *float64
	Weight float64
}

// CombineEnsemble pools terminal prices per horizon by sampling with
// replacement proportional to each model's renormalised weight, per
// SPEC_FULL.md §4.1. The single-model case returns that model's own stats
// with a nil ModelBreakdown, matching the reference implementation.
func CombineEnsemble(results map[string]*ModelResult, weights map[string]float64, horizons []int, basePrice float64, targetMultipliers []float64, totalSamples int, rng *Rand) EnsembleResult {
	available := make(map[string]float64, len(results))
	var totalWeight float64
	for model := range results {
		w := weights[model]
		available[model] = w
		totalWeight += w
	}
	if totalWeight <= 0 {
		n := float64(len(available))
		for k := range available {
			available[k] = 1.0 / n
		}
	} else {
		for k, w := range available {
			available[k] = w / totalWeight
		}
	}

	if len(results) == 1 {
		for _, r := range results {
			return EnsembleResult{
				Horizons:       r.Horizons,
				TargetProbs:    targetProbsFromTerminal(r.TerminalPrices, basePrice, targetMultipliers),
				ModelBreakdown: nil,
			}
		}
	}

	sampleCounts := make(map[string]int, len(available))
	modelsList := make([]string, 0, len(available))
	for k := range available {
		modelsList = append(modelsList, k)
	}
	var allocated int
	for i, model := range modelsList {
		if i == len(modelsList)-1 {
			n := totalSamples - allocated
			if n < 0 {
				n = 0
			}
			sampleCounts[model] = n
		} else {
			n := int(round(available[model] * float64(totalSamples)))
			sampleCounts[model] = n
			allocated += n
		}
	}

	pooledByHorizon := make(map[int][]float64, len(horizons))
	for _, h := range horizons {
		var pooled []float64
		for model, r := range results {
			tp, ok := r.TerminalPrices[h]
			if !ok || len(tp) == 0 {
				continue
			}
			nSample := sampleCounts[model]
			if nSample <= 0 {
				continue
			}
			for i := 0; i < nSample; i++ {
				idx := rng.IntN(len(tp))
				pooled = append(pooled, tp[idx])
			}
		}
		if len(pooled) > 0 {
			pooledByHorizon[h] = pooled
		}
	}

	horizonsOut := make(map[int]HorizonStats, len(pooledByHorizon))
	for h, pooled := range pooledByHorizon {
		horizonsOut[h] = computeHorizonStats(pooled, basePrice, rng)
	}

	targetProbs := make(map[float64]map[int]float64, len(targetMultipliers))
	for _, mult := range targetMultipliers {
		targetPrice := basePrice * mult
		m := make(map[int]float64, len(horizons))
		for _, h := range horizons {
			pooled, ok := pooledByHorizon[h]
			if !ok {
				continue
			}
			above := 0
			for _, v := range pooled {
				if v > targetPrice {
					above++
				}
			}
			m[h] = round4(float64(above) / float64(len(pooled)))
		}
		targetProbs[mult] = m
	}

	scores := make([]ModelScore, 0, len(results))
	for model, r := range results {
		score := SimulationScore(r.Horizons)
		scores = append(scores, ModelScore{Model: model, Score: score.Score, Weight: round4(available[model])})
	}

	weightsOut := make(map[string]float64, len(available))
	for k, v := range available {
		weightsOut[k] = round4(v)
	}

	return EnsembleResult{
		Horizons:    horizonsOut,
		TargetProbs: targetProbs,
		ModelBreakdown: &ModelBreakdown{
			ModelScores:  scores,
			ModelWeights: weightsOut,
			Method:       "weighted_pooling",
		},
	}
}

func targetProbsFromTerminal(terminalPrices map[int][]float64, basePrice float64, multipliers []float64) map[float64]map[int]float64 {
	out := make(map[float64]map[int]float64, len(multipliers))
	for _, mult := range multipliers {
		target := basePrice * mult
		m := make(map[int]float64)
		for h, tp := range terminalPrices {
			above := 0
			for _, v := range tp {
				if v > target {
					above++
				}
			}
			if len(tp) > 0 {
				m[h] = round4(float64(above) / float64(len(tp)))
			}
		}
		out[mult] = m
	}
	return out
}

func round(x float64) float64 {
	if x >= 0 {
		return float64(int64(x + 0.5))
	}
	return float64(int64(x - 0.5))
}

func round4(x float64) float64 {
	return float64(int64(x*10000+0.5)) / 10000
}
