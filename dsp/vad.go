// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// VADConfig parameterises the voice activity detector. Times are in
// seconds, frequencies in Hz.
type VADConfig struct {
	SampleRate           float64
	TriggerLevel         float64
	TriggerTime          float64
	SearchTime           float64
	AllowedGap           float64
	PreTriggerTime       float64
	BootTime             float64
	NoiseUpTime          float64
	NoiseDownTime        float64
	NoiseReductionAmount float64
	MeasureFreq          float64
	// MeasureDuration defaults to two measurement periods when zero.
	MeasureDuration   float64
	MeasureSmoothTime float64
	HPFilterFreq      float64
	LPFilterFreq      float64
	HPLifterFreq      float64
	LPLifterFreq      float64
}

// vadPlan holds everything derived from a VADConfig.
type vadPlan struct {
	measureLen       int
	dftLen           int
	measurePeriod    int
	measuresLen      int
	gapLen           int
	samplesLen       int
	spectrumWindow   []float64
	spectrumStart    int
	spectrumEnd      int
	cepstrumWindow   []float64
	cepstrumStart    int
	cepstrumEnd      int
	noiseUpMult      float64
	noiseDownMult    float64
	smoothMult       float64
	triggerMeasMult  float64
	bootCountMax     int
	triggerLevel     float64
	noiseReductionAm float64
}

func newVADPlan(c VADConfig) (*vadPlan, error) {
	if c.SampleRate <= 0 || c.MeasureFreq <= 0 {
		return nil, fmt.Errorf("%w: sample_rate=%g measure_freq=%g", ErrInvalidArgument, c.SampleRate, c.MeasureFreq)
	}
	if c.TriggerTime <= 0 || c.NoiseUpTime <= 0 || c.NoiseDownTime <= 0 || c.MeasureSmoothTime <= 0 {
		return nil, fmt.Errorf("%w: time constants must be positive", ErrInvalidArgument)
	}
	if c.SearchTime <= 0 || c.AllowedGap < 0 || c.PreTriggerTime < 0 || c.BootTime < 0 {
		return nil, fmt.Errorf("%w: search, gap, pre-trigger and boot times", ErrInvalidArgument)
	}
	measureDuration := c.MeasureDuration
	if measureDuration == 0 {
		measureDuration = 2.0 / c.MeasureFreq
	}

	p := &vadPlan{triggerLevel: c.TriggerLevel, noiseReductionAm: c.NoiseReductionAmount}
	p.measureLen = int(c.SampleRate*measureDuration + 0.5)
	if p.measureLen < 1 {
		return nil, fmt.Errorf("%w: measure window of %d samples", ErrInvalidArgument, p.measureLen)
	}
	p.dftLen = 16
	for p.dftLen < p.measureLen {
		p.dftLen *= 2
	}
	p.measurePeriod = int(c.SampleRate/c.MeasureFreq + 0.5)
	p.measuresLen = int(math.Ceil(c.SearchTime * c.MeasureFreq))
	searchPreTrigger := p.measuresLen * p.measurePeriod
	p.gapLen = int(c.AllowedGap*c.MeasureFreq + 0.5)
	fixedPreTrigger := int(c.PreTriggerTime*c.SampleRate + 0.5)
	p.samplesLen = fixedPreTrigger + searchPreTrigger + p.measureLen

	hann, err := Window(Hann, p.measureLen)
	if err != nil {
		return nil, err
	}
	p.spectrumWindow = make([]float64, p.measureLen)
	for i := range p.spectrumWindow {
		p.spectrumWindow[i] = 2.0 / math.Sqrt(float64(p.measureLen)) * hann[i]
	}

	p.spectrumStart = max(int(c.HPFilterFreq/c.SampleRate*float64(p.dftLen)+0.5), 1)
	p.spectrumEnd = min(int(c.LPFilterFreq/c.SampleRate*float64(p.dftLen)+0.5), p.dftLen/2)
	if p.spectrumEnd <= p.spectrumStart {
		return nil, fmt.Errorf("%w: empty analysis band %g-%g Hz", ErrInvalidArgument, c.HPFilterFreq, c.LPFilterFreq)
	}
	band := p.spectrumEnd - p.spectrumStart
	cw, err := Window(Hann, band)
	if err != nil {
		return nil, err
	}
	p.cepstrumWindow = make([]float64, band)
	for i := range p.cepstrumWindow {
		p.cepstrumWindow[i] = 2.0 / math.Sqrt(float64(band)) * cw[i]
	}

	p.cepstrumStart = int(math.Ceil(c.SampleRate * 0.5 / c.LPLifterFreq))
	p.cepstrumEnd = min(int(math.Floor(c.SampleRate*0.5/c.HPLifterFreq)), p.dftLen/4)
	if p.cepstrumEnd <= p.cepstrumStart {
		return nil, fmt.Errorf("%w: empty lifter band %g-%g Hz", ErrInvalidArgument, c.HPLifterFreq, c.LPLifterFreq)
	}

	p.noiseUpMult = math.Exp(-1.0 / (c.NoiseUpTime * c.MeasureFreq))
	p.noiseDownMult = math.Exp(-1.0 / (c.NoiseDownTime * c.MeasureFreq))
	p.smoothMult = math.Exp(-1.0 / (c.MeasureSmoothTime * c.MeasureFreq))
	p.triggerMeasMult = math.Exp(-1.0 / (c.TriggerTime * c.MeasureFreq))
	p.bootCountMax = int(c.BootTime*c.MeasureFreq - 0.5)
	return p, nil
}

// vadChannel is the running state of one channel.
type vadChannel struct {
	samples  []float64
	spectrum []float64
	noise    []float64
	measures []float64
	meanMeas float64
}

// vadScratch holds FFT plans and buffers reused across measurements.
type vadScratch struct {
	dft      *fourier.FFT
	cep      *fourier.FFT
	dftBuf   []float64
	dftOut   []complex128
	cepBuf   []float64
	cepOut   []complex128
	magnitud []float64
}

func (p *vadPlan) newScratch() *vadScratch {
	return &vadScratch{
		dft:      fourier.NewFFT(p.dftLen),
		cep:      fourier.NewFFT(p.dftLen / 2),
		dftBuf:   make([]float64, p.dftLen),
		dftOut:   make([]complex128, p.dftLen/2+1),
		cepBuf:   make([]float64, p.dftLen/2),
		cepOut:   make([]complex128, p.dftLen/4+1),
		magnitud: make([]float64, p.spectrumEnd-p.spectrumStart),
	}
}

// measure returns the voice activity measure of the window ending just
// before index in the channel's circular sample buffer.
func (p *vadPlan) measure(ch *vadChannel, s *vadScratch, index, bootCount int) float64 {
	for i := range s.dftBuf {
		s.dftBuf[i] = 0
	}
	for i := range p.measureLen {
		s.dftBuf[i] = ch.samples[(index+i)%p.samplesLen] * p.spectrumWindow[i]
	}
	s.dft.Coefficients(s.dftOut, s.dftBuf)

	mult := p.smoothMult
	if bootCount >= 0 {
		mult = float64(bootCount) / (1.0 + float64(bootCount))
	}
	for i := p.spectrumStart; i < p.spectrumEnd; i++ {
		abs := math.Hypot(real(s.dftOut[i]), imag(s.dftOut[i]))
		ch.spectrum[i] = ch.spectrum[i]*mult + abs*(1-mult)
	}

	for i := p.spectrumStart; i < p.spectrumEnd; i++ {
		d := ch.spectrum[i] * ch.spectrum[i]
		var nm float64
		if bootCount < 0 {
			if d > ch.noise[i] {
				nm = p.noiseUpMult
			} else {
				nm = p.noiseDownMult
			}
		}
		ch.noise[i] = ch.noise[i]*nm + d*(1-nm)
		s.magnitud[i-p.spectrumStart] = math.Sqrt(math.Max(0, d-p.noiseReductionAm*ch.noise[i]))
	}

	for i := range s.cepBuf {
		s.cepBuf[i] = 0
	}
	for i, v := range s.magnitud {
		s.cepBuf[p.spectrumStart+i] = v * p.cepstrumWindow[i]
	}
	s.cep.Coefficients(s.cepOut, s.cepBuf)

	var result float64
	for i := p.cepstrumStart; i < p.cepstrumEnd; i++ {
		re, im := real(s.cepOut[i]), imag(s.cepOut[i])
		result += re*re + im*im
	}
	if result > 0 {
		result = math.Log(result / float64(p.cepstrumEnd-p.cepstrumStart))
	} else {
		result = math.Inf(-1)
	}
	return math.Max(0, 21+result)
}

// VADTrimStart runs the detector over channels (all of equal length) and
// returns the index of the first sample to keep. Channels are measured
// together: activity on any channel triggers the cut for all of them.
func VADTrimStart(channels [][]float64, cfg VADConfig) (int, error) {
	p, err := newVADPlan(cfg)
	if err != nil {
		return 0, err
	}
	if len(channels) == 0 {
		return 0, nil
	}
	length := len(channels[0])
	for _, ch := range channels {
		if len(ch) != length {
			return 0, fmt.Errorf("%w: channels of unequal length", ErrInvalidArgument)
		}
	}

	state := make([]*vadChannel, len(channels))
	for i := range state {
		state[i] = &vadChannel{
			samples:  make([]float64, p.samplesLen),
			spectrum: make([]float64, p.dftLen),
			noise:    make([]float64, p.dftLen),
			measures: make([]float64, p.measuresLen),
		}
	}
	scratch := p.newScratch()

	measureTimer := p.measureLen
	bootCount, measuresIndex, flushedLen, samplesIndex := 0, 0, 0, 0
	triggered := false
	toFlush := 0
	// last is the index of the sample the detector stopped on.
	last := length - 1

	for pos := range length {
		measureTimer--
		for i, ch := range state {
			ch.samples[samplesIndex] = channels[i][pos]
			if measureTimer != 0 {
				continue
			}
			index := (samplesIndex + p.samplesLen - p.measureLen) % p.samplesLen
			meas := p.measure(ch, scratch, index, bootCount)
			ch.measures[measuresIndex] = meas
			ch.meanMeas = ch.meanMeas*p.triggerMeasMult + meas*(1-p.triggerMeasMult)

			triggered = triggered || ch.meanMeas >= p.triggerLevel
			if triggered {
				n := p.measuresLen
				k := measuresIndex
				jTrigger, jZero := n, n
				j := 0
				for j = 0; j < n; j++ {
					if ch.measures[k] >= p.triggerLevel && j <= jTrigger+p.gapLen {
						jZero, jTrigger = j, j
					} else if ch.measures[k] == 0 && jTrigger >= jZero {
						jZero = j
					}
					k = (k + n - 1) % n
				}
				// the scan leaves j at n-1
				j = min(n-1, jZero)
				toFlush = min(max(toFlush, j), n)
			}
		}

		samplesIndex++
		if samplesIndex == p.samplesLen {
			samplesIndex = 0
		}
		if measureTimer == 0 {
			measureTimer = p.measurePeriod
			measuresIndex = (measuresIndex + 1) % p.measuresLen
			if bootCount >= 0 {
				if bootCount == p.bootCountMax {
					bootCount = -1
				} else {
					bootCount++
				}
			}
		}
		if triggered {
			flushedLen = (p.measuresLen - toFlush) * p.measurePeriod
			last = pos
			break
		}
	}

	start := last - p.samplesLen + flushedLen
	return min(max(start, 0), length), nil
}
