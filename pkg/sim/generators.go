// Copyright SDLabs Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package sim

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// step implements the standard SD STEP generator: 0 before startTime, then
// height from startTime onward.
func step(time, height, startTime float64) float64 {
	if time < startTime {
		return 0
	}
	return height
}

// ramp implements RAMP: 0 before start, slope*(time-start) between start
// and end, held at its final value after end. endTime <= startTime means
// the ramp never stops.
func ramp(time, slope, start, end float64) float64 {
	if time < start {
		return 0
	}
	if end > start && time > end {
		return slope * (end - start)
	}
	return slope * (time - start)
}

// pulse implements PULSE: height for one interval of width starting at
// start, 0 elsewhere.
func pulse(time, height, start, width float64) float64 {
	if time >= start && time < start+width {
		return height
	}
	return 0
}

// pulseTrain implements PULSETRAIN: a width-wide pulse of height 1 repeated
// every interval seconds, from start until end (end <= start means
// unbounded).
func pulseTrain(time, start, width, interval, end float64) float64 {
	if time < start {
		return 0
	}
	if end > start && time >= end {
		return 0
	}
	if interval <= 0 {
		return 0
	}
	offset := math.Mod(time-start, interval)
	if offset < width {
		return 1
	}
	return 0
}

// uniform draws from [lo, hi).
func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// poisson draws from a Poisson distribution with mean lambda using Knuth's
// algorithm, adequate for the small lambda typical of SD event-count
// models.
func poisson(rng *rand.Rand, lambda float64) float64 {
	if lambda <= 0 {
		return 0
	}
	l := math.Exp(-lambda)
	k := 0.0
	p := 1.0
	for {
		k++
		p *= rng.Float64()
		if p <= l {
			return k - 1
		}
	}
}

// pinkNoise approximates 1/f pink noise with the classic Voss-McCartney
// octave-sum: a small fixed bank of white-noise generators, each updated
// with independent probability and summed. Adequate for the noise-injection
// role PINKNOISE plays in SD models; not a precision audio-grade generator.
func pinkNoise(rng *rand.Rand) float64 {
	const octaves = 8
	sum := 0.0
	for i := 0; i < octaves; i++ {
		if rng.Intn(1<<uint(i+1)) == 0 {
			sum += rng.NormFloat64()
		}
	}
	return sum / math.Sqrt(octaves)
}

func gonumSum(vals []float64) float64 {
	return floats.Sum(vals)
}

func gonumMean(vals []float64) float64 {
	return stat.Mean(vals, nil)
}

func gonumStdDev(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	return stat.StdDev(vals, nil)
}
