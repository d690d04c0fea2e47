package power

import "time"

// Resample folds raw points into fixed buckets of width res across w.
// Bucket k spans [w.Start+k*res, w.Start+(k+1)*res) and takes the
// arithmetic mean of the points inside it, stamped with the bucket
// start. An empty bucket repeats the last observed value while the
// distance from the bucket start to the last real point stays within
// maxGap; beyond that the bucket is omitted. Input must be ascending.
func Resample(points []TimePoint, w Window, res, maxGap time.Duration) []TimePoint {
	if res <= 0 || len(points) == 0 {
		return nil
	}

	n := int(w.Span() / res)
	if w.Span()%res != 0 {
		n++
	}

	out := make([]TimePoint, 0, n)
	var (
		idx      int
		lastVal  float64
		lastSeen time.Time
		seeded   bool
	)
	for k := 0; k < n; k++ {
		bucketStart := w.Start.Add(time.Duration(k) * res)
		bucketEnd := bucketStart.Add(res)

		var sum float64
		var cnt int
		for idx < len(points) && points[idx].At.Before(bucketEnd) {
			if !points[idx].At.Before(bucketStart) {
				sum += points[idx].PowerMW
				cnt++
				lastSeen = points[idx].At
			}
			idx++
		}

		switch {
		case cnt > 0:
			lastVal = sum / float64(cnt)
			seeded = true
			out = append(out, TimePoint{At: bucketStart, PowerMW: lastVal})
		case seeded && bucketStart.Sub(lastSeen) <= maxGap:
			out = append(out, TimePoint{At: bucketStart, PowerMW: lastVal})
		}
	}
	return out
}

// Smooth applies a trailing rolling mean over up to window points.
// Shorter prefixes average what is available, so the output keeps the
// input's length and timestamps.
func Smooth(points []TimePoint, window int) []TimePoint {
	if window <= 1 || len(points) == 0 {
		return points
	}

	out := make([]TimePoint, len(points))
	var sum float64
	for i, p := range points {
		sum += p.PowerMW
		if i >= window {
			sum -= points[i-window].PowerMW
		}
		span := window
		if i+1 < window {
			span = i + 1
		}
		out[i] = TimePoint{At: p.At, PowerMW: sum / float64(span)}
	}
	return out
}

// ClampToCapacity bounds every value to [0, capacityMW].
func ClampToCapacity(points []TimePoint, capacityMW float64) []TimePoint {
	for i, p := range points {
		switch {
		case p.PowerMW < 0:
			points[i].PowerMW = 0
		case p.PowerMW > capacityMW:
			points[i].PowerMW = capacityMW
		}
	}
	return points
}
