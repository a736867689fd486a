package mounts

import "go.uber.org/zap"

// statfs is swapped in tests.
var statfs = usedBytes

// EstimateUsedBytes sums the used-byte figure reported by the
// filesystem for each root. The result is only a progress denominator:
// it bounds nothing and constrains no totals. A root whose statistics
// query fails is skipped with a warning and counted in the second
// return value; the remaining roots still contribute.
func EstimateUsedBytes(roots []string, log *zap.Logger) (uint64, uint64) {
	if log == nil {
		log = zap.NewNop()
	}

	var total, failed uint64
	for _, root := range roots {
		used, err := statfs(root)
		if err != nil {
			failed++
			log.Warn("mount statistics unavailable, excluded from progress estimate",
				zap.String("mount", root),
				zap.Error(err))
			continue
		}
		total += used
	}
	return total, failed
}
