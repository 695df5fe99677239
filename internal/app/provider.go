package app

import (
	"fmt"
	"os"

	"github.com/RyanBlaney/latency-benchmark-common/logging"

	"github.com/RyanBlaney/formant-extract/internal/extract"
	"github.com/RyanBlaney/formant-extract/pkg/formant"
	"github.com/RyanBlaney/formant-extract/pkg/measure"
	"github.com/RyanBlaney/formant-extract/pkg/praat"
)

// JobProvider serves the candidate tracks recorded in a job document.
type JobProvider struct {
	job    *Job
	index  map[[2]int]*VowelCandidates
	logger logging.Logger
}

// NewJobProvider indexes the candidates of job.
func NewJobProvider(job *Job, logger logging.Logger) *JobProvider {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	index := make(map[[2]int]*VowelCandidates, len(job.Candidates))
	for i := range job.Candidates {
		c := &job.Candidates[i]
		index[[2]int{c.Word, c.Phone}] = c
	}

	return &JobProvider{
		job:    job,
		index:  index,
		logger: logger.WithFields(logging.Fields{"component": "job_provider"}),
	}
}

// Candidates implements extract.CandidateProvider.
func (p *JobProvider) Candidates(wordIndex, phoneIndex int, phone extract.Phone, window extract.Window) (*extract.Candidates, error) {
	vc, ok := p.index[[2]int{wordIndex, phoneIndex}]
	if !ok {
		return nil, fmt.Errorf("no candidates for %s (word %d, phone %d)", phone.Label, wordIndex, phoneIndex)
	}

	offset := 0.0
	if vc.RelativeTimes {
		offset = window.Start()
	}

	cands := &extract.Candidates{Tracks: make([]extract.OrderTrack, 0, len(vc.Orders))}
	for _, o := range vc.Orders {
		track, err := p.track(o, offset)
		if err != nil {
			return nil, fmt.Errorf("order %d: %w", o.Order, err)
		}
		cands.Tracks = append(cands.Tracks, extract.OrderTrack{Order: o.Order, Track: track})
	}

	if vc.Intensity != nil {
		intensity, err := p.intensity(vc.Intensity, offset)
		if err != nil {
			return nil, fmt.Errorf("intensity: %w", err)
		}
		cands.Intensity = intensity
	}

	p.logger.Debug("Loaded candidates", logging.Fields{
		"phone":     phone.Label,
		"word":      wordIndex,
		"orders":    len(cands.Tracks),
		"intensity": cands.Intensity.Len(),
	})
	return cands, nil
}

func (p *JobProvider) track(o OrderSource, offset float64) (formant.Track, error) {
	var track formant.Track
	if o.PraatFile != "" {
		f, err := os.Open(p.job.resolve(o.PraatFile))
		if err != nil {
			return nil, err
		}
		defer f.Close()

		track, _, err = praat.ReadFormant(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", o.PraatFile, err)
		}
	} else {
		track = make(formant.Track, len(o.Frames))
		for i, fr := range o.Frames {
			track[i] = formant.NewFrame(fr.T, fr.F, fr.B)
		}
	}

	if offset != 0 {
		for i := range track {
			track[i].Time = formant.Round(track[i].Time+offset, 3)
		}
	}
	return track, nil
}

func (p *JobProvider) intensity(src *IntensitySource, offset float64) (measure.Intensity, error) {
	in := measure.Intensity{
		Times:  append([]float64(nil), src.Times...),
		Values: append([]float64(nil), src.Values...),
	}
	if src.PraatFile != "" {
		f, err := os.Open(p.job.resolve(src.PraatFile))
		if err != nil {
			return measure.Intensity{}, err
		}
		defer f.Close()

		in, err = praat.ReadIntensity(f)
		if err != nil {
			return measure.Intensity{}, fmt.Errorf("%s: %w", src.PraatFile, err)
		}
	}

	if offset != 0 {
		for i := range in.Times {
			in.Times[i] = formant.Round(in.Times[i]+offset, 3)
		}
	}
	return in, nil
}
