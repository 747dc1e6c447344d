package chunk

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-xlsform/pkg/form"
	"github.com/goliatone/go-xlsform/pkg/rules"
)

var errEngineNil = errors.New("chunk: engine is required")

// Result holds the findings of one chunk.
type Result struct {
	Index    int
	Source   string
	Findings []rules.Finding
}

// Validate runs the engine over every chunk concurrently. Results keep the
// order of chunks.
func Validate(ctx context.Context, engine *rules.Engine, chunks []*form.Form) ([]Result, error) {
	return validate(ctx, engine, chunks, engine.Run)
}

func validate(ctx context.Context, engine *rules.Engine, chunks []*form.Form, check func(*rules.Model) []rules.Finding) ([]Result, error) {
	if engine == nil {
		return nil, errEngineNil
	}
	results := make([]Result, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = Result{
				Index:    i,
				Source:   chunk.Source,
				Findings: check(rules.NewModel(chunk)),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("chunk: validate: %w", err)
	}
	return results, nil
}

// Merge concatenates chunks into one form. Rows keep their own Source so
// findings on the merged form point back at the chunk they came from. The
// first chunk with a settings sheet provides the settings.
func Merge(chunks []*form.Form) *form.Form {
	merged := &form.Form{Layouts: make(map[string]form.SheetLayout)}
	var sources []string
	seen := make(map[string]struct{})
	for _, chunk := range chunks {
		if chunk == nil {
			continue
		}
		if _, dup := seen[chunk.Source]; !dup && chunk.Source != "" {
			seen[chunk.Source] = struct{}{}
			sources = append(sources, chunk.Source)
		}
		merged.Survey = append(merged.Survey, chunk.Survey...)
		merged.Choices = append(merged.Choices, chunk.Choices...)
		merged.HasChoices = merged.HasChoices || chunk.HasChoices
		if chunk.HasSettings && !merged.HasSettings {
			merged.HasSettings = true
			merged.Settings = chunk.Settings
		}
	}
	merged.Source = strings.Join(sources, "+")
	return merged
}

// MergeFindings runs the cross-chunk rules over a merged form.
func MergeFindings(engine *rules.Engine, merged *form.Form) []rules.Finding {
	if engine == nil || merged == nil {
		return nil
	}
	return engine.RunCodes(rules.NewModel(merged), rules.CrossChunkCodes...)
}

// ValidateAll checks chunks concurrently, leaving out rules that need the
// whole form, then runs those rules once on the merged form. The combined
// findings are sorted.
func ValidateAll(ctx context.Context, engine *rules.Engine, chunks []*form.Form) ([]rules.Finding, error) {
	whole := append(append([]string(nil), rules.CrossChunkCodes...), rules.FormCodes...)
	results, err := validate(ctx, engine, chunks, func(m *rules.Model) []rules.Finding {
		return engine.RunExcept(m, whole...)
	})
	if err != nil {
		return nil, err
	}

	var out []rules.Finding
	for _, result := range results {
		out = append(out, result.Findings...)
	}
	out = append(out, engine.RunCodes(rules.NewModel(Merge(chunks)), whole...)...)
	rules.Sort(out)
	return out, nil
}

// Split cuts f into chunks of roughly size survey rows. Cuts only fall
// between top-level rows so groups and repeats stay whole. Each chunk carries
// the choice lists its selects use; unused lists travel with the last chunk
// and the settings with the first.
func Split(f *form.Form, size int) []*form.Form {
	if f == nil {
		return nil
	}
	if size <= 0 || len(f.Survey) <= size {
		return []*form.Form{f}
	}

	var (
		chunks  []*form.Form
		current []form.SurveyRow
		depth   int
	)
	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, &form.Form{
			Source:     f.Source,
			Survey:     current,
			HasChoices: f.HasChoices,
			Layouts:    make(map[string]form.SheetLayout),
		})
		current = nil
	}
	for _, row := range f.Survey {
		current = append(current, row)
		switch {
		case row.Type.IsBegin():
			depth++
		case row.Type.IsEnd() && depth > 0:
			depth--
		}
		if depth == 0 && len(current) >= size {
			flush()
		}
	}
	flush()

	distributeChoices(f, chunks)
	chunks[0].Settings = f.Settings
	chunks[0].HasSettings = f.HasSettings
	for name, layout := range f.Layouts {
		chunks[0].Layouts[name] = layout
	}
	return chunks
}

func distributeChoices(f *form.Form, chunks []*form.Form) {
	owner := make(map[string]int)
	for i, chunk := range chunks {
		for _, row := range chunk.Survey {
			if row.Type.ListName == "" || !row.Type.IsSelect() {
				continue
			}
			if _, ok := owner[row.Type.ListName]; !ok {
				owner[row.Type.ListName] = i
			}
		}
	}
	last := len(chunks) - 1
	for _, choice := range f.Choices {
		idx, ok := owner[choice.ListName]
		if !ok {
			idx = last
		}
		chunks[idx].Choices = append(chunks[idx].Choices, choice)
	}
}
