package forecast

// SelectEpoch picks the epoch minimizing the weighted score
// trainWeight*TrainRMSE + (1-trainWeight)*ValRMSE. Ties resolve to the
// lowest epoch index, which the strict less-than comparison gives for
// free. Returns the index into result.Epochs and its record.
func SelectEpoch(result *TrainResult, trainWeight float64) (int, EpochRecord) {
	best := 0
	bestScore := score(result.Epochs[0], trainWeight)
	for i := 1; i < len(result.Epochs); i++ {
		if s := score(result.Epochs[i], trainWeight); s < bestScore {
			best = i
			bestScore = s
		}
	}
	return best, result.Epochs[best]
}

func score(r EpochRecord, trainWeight float64) float64 {
	return trainWeight*r.TrainRMSE + (1-trainWeight)*r.ValRMSE
}
