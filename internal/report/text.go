package report

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/RyanBlaney/formant-extract/internal/extract"
	"github.com/RyanBlaney/formant-extract/internal/pipeline"
	"github.com/RyanBlaney/formant-extract/pkg/formant"
	"github.com/RyanBlaney/formant-extract/pkg/plotnik"
)

var trackColumns = []string{
	"F1@20%", "F2@20%", "F1@35%", "F2@35%", "F1@50%", "F2@50%", "F1@65%", "F2@65%", "F1@80%", "F2@80%",
}

// Options select the optional columns of the tab-delimited outputs.
type Options struct {
	Header      bool
	Candidates  bool
	Mahalanobis bool
}

// TextHeader returns the column names of the tab-delimited measurement file.
func TextHeader(speaker extract.Speaker, opts Options) []string {
	keys, _ := speaker.Attributes()
	header := append([]string{}, keys...)
	header = append(header,
		"vowel", "stress", "pre_word", "word", "fol_word",
		"F1", "F2", "F3", "B1", "B2", "B3", "t", "beg", "end", "dur",
		"plt_vclass", "ipa_vclass", "plt_manner", "plt_place", "plt_voice", "plt_preseg", "plt_folseq",
		"style", "glide", "pre_seg", "fol_seg", "context", "vowel_index",
		"pre_word_trans", "word_trans", "fol_word_trans",
	)
	header = append(header, trackColumns...)
	if opts.Mahalanobis {
		header = append(header, "nFormants")
	}
	if opts.Candidates {
		header = append(header, "poles", "bandwidths")
	}
	return header
}

// WriteText writes one tab-delimited record per measured vowel.
func WriteText(w io.Writer, res *pipeline.Result, opts Options) error {
	lw := newLineWriter(bufio.NewWriter(w), "\t", "\n")
	if opts.Header {
		lw.row(TextHeader(res.Speaker, opts)...)
	}

	keys, attrs := res.Speaker.Attributes()
	for _, vm := range res.Measurements {
		fields := make([]string, 0, len(keys)+45)
		for _, k := range keys {
			fields = append(fields, attrs[k])
		}
		fields = append(fields,
			vm.Phone, vm.Stress, vm.PreWord, vm.Word, vm.FolWord,
			value(vm.F1), present(vm.F2), present(vm.F3),
			value(vm.B1), present(vm.B2), present(vm.B3),
			number(vm.T), number(vm.Beg), number(vm.End), number(vm.Dur),
		)
		fields = append(fields, codeLabels(vm.Code)...)
		fields = append(fields,
			vm.Style, vm.Glide, vm.PreSeg, vm.FolSeg, vm.Context, strconv.Itoa(vm.Index),
			vm.PreWordTrans, vm.WordTrans, vm.FolWordTrans,
		)
		fields = append(fields, samples(vm.Tracks, 1)...)
		if vm.NFormants > 0 {
			fields = append(fields, strconv.Itoa(vm.NFormants))
		}
		if opts.Candidates {
			fields = append(fields, joinNumbers(vm.Poles, ","), joinNumbers(vm.Bandwidths, ","))
		}
		lw.row(fields...)
	}
	return lw.flush()
}

// WriteNormalized writes the Lobanov-normalized variant of the measurements.
func WriteNormalized(w io.Writer, res *pipeline.Result, opts Options) error {
	lw := newLineWriter(bufio.NewWriter(w), "\t", "\n")
	if opts.Header {
		s := res.Speaker
		lw.raw(strings.Join([]string{s.Name, s.Age, s.Sex, s.Ethnicity, s.YearsOfSchooling, s.Location, s.Year}, ", "))
		lw.raw("\n\n")

		header := []string{
			"vowel", "stress", "word", "norm_F1", "norm_F2", "t", "beg", "end", "dur",
			"cd", "fm", "fp", "fv", "ps", "fs", "style", "glide",
		}
		for _, c := range trackColumns {
			header = append(header, "norm_"+c)
		}
		if opts.Mahalanobis {
			header = append(header, "nFormants")
		}
		lw.row(header...)
	}

	for _, vm := range res.Measurements {
		c := vm.Code
		fields := []string{
			vm.Phone, vm.Stress, vm.Word, value(vm.NormF1), value(vm.NormF2),
			number(vm.T), number(vm.Beg), number(vm.End), number(vm.Dur),
			c.Class, c.Manner, c.Place, c.Voice, c.Preceding, c.FollowingSeq, vm.Style, vm.Glide,
		}
		fields = append(fields, samples(vm.NormTracks, 1)...)
		if vm.NFormants > 0 {
			fields = append(fields, strconv.Itoa(vm.NFormants))
		}
		lw.row(fields...)
	}
	return lw.flush()
}

// WriteFormantSettings writes the table of winning formant orders per vowel
// class. name is the output the table describes.
func WriteFormantSettings(w io.Writer, res *pipeline.Result, name string) error {
	lw := newLineWriter(bufio.NewWriter(w), "\t", "\n")
	s := res.Speaker
	lw.raw(fmt.Sprintf("Formant settings for %s:\n\n", name))
	lw.raw(strings.Join([]string{s.Name, s.Age, s.Sex, s.City, s.State, s.Year}, ", "))
	lw.raw("\n\n")
	lw.row("vowel", "3", "4", "5", "6")
	lw.raw(strings.Repeat("-", 40) + "\n")

	counts := pipeline.ClassOrderCounts(res.Measurements)
	for _, cd := range plotnik.Codes {
		fields := []string{cd}
		for order := 3; order <= 6; order++ {
			fields = append(fields, strconv.Itoa(counts[cd][order]))
		}
		lw.row(fields...)
	}
	return lw.flush()
}

// TracksHeader returns the column names of the per-frame track file.
func TracksHeader(speaker extract.Speaker) []string {
	keys, _ := speaker.Attributes()
	return append(append([]string{}, keys...),
		"id", "vowel", "stress", "pre_word", "word", "fol_word",
		"F1_meas", "F2_meas", "F3_meas", "F1", "F2", "F3", "B1", "B2", "B3", "t", "t_meas", "dur",
		"plt_vclass", "ipa_vclass", "plt_manner", "plt_place", "plt_voice", "plt_preseg", "plt_folseq",
		"style", "glide", "pre_seg", "fol_seg", "context", "vowel_index",
		"pre_word_trans", "word_trans", "fol_word_trans",
	)
}

// WriteTracks writes every frame of each token's winning track. Tokens whose
// track starts with fewer than two formants are left out.
func WriteTracks(w io.Writer, res *pipeline.Result) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write(TracksHeader(res.Speaker)); err != nil {
		return err
	}

	keys, attrs := res.Speaker.Attributes()
	speaker := make([]string, len(keys))
	for i, k := range keys {
		speaker[i] = attrs[k]
	}

	for n, vm := range res.Measurements {
		track := vm.WinnerTrack()
		if len(track) == 0 || track[0].NumFormants() < 2 {
			continue
		}

		token := []string{
			strconv.Itoa(n), vm.Phone, vm.Stress, vm.PreWord, vm.Word, vm.FolWord,
			value(vm.F1), value(vm.F2), present(vm.F3),
		}
		context := append([]string{number(vm.T), number(vm.Dur)}, codeLabels(vm.Code)...)
		context = append(context,
			vm.Style, vm.Glide, vm.PreSeg, vm.FolSeg, vm.Context, strconv.Itoa(vm.Index),
			vm.PreWordTrans, vm.WordTrans, vm.FolWordTrans,
		)

		for _, f := range track {
			record := append(append([]string{}, speaker...), token...)
			record = append(record,
				value(f.F(1)), value(f.F(2)), value(f.F(3)),
				value(f.B(1)), value(f.B(2)), value(f.B(3)),
				number(f.Time),
			)
			record = append(record, context...)
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// codeLabels returns the descriptive names of a Plotnik code.
func codeLabels(c plotnik.Code) []string {
	return []string{
		plotnik.VowelName(c.Class),
		plotnik.IPAName(c.Class),
		plotnik.MannerName(c.Manner),
		plotnik.PlaceName(c.Place),
		plotnik.VoiceName(c.Voice),
		plotnik.PrecedingName(c.Preceding),
		plotnik.FollowingSeqName(c.FollowingSeq),
	}
}

func samples(s formant.Samples, decimals int) []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[i] = rounded(v, decimals)
	}
	return out
}
