package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/jacoelho/esq/client"
	"github.com/jacoelho/esq/flat"
	"github.com/jacoelho/esq/internal/config"
	"github.com/jacoelho/esq/value"
)

// selectionKey roots the flattened paths of -select matches.
const selectionKey = "$"

func (r *Runner) printSearch(res *client.SearchResult) error {
	for i := range res.Hits {
		hit := &res.Hits[i]
		if err := r.printDocument(hit.ID, &hit.Score, hit.Source); err != nil {
			return fmt.Errorf("hit %s: %w", hit.ID, err)
		}
	}

	if r.config.Output == config.OutputJSON || len(res.Aggregations) == 0 {
		return nil
	}
	names := make([]string, 0, len(res.Aggregations))
	for name := range res.Aggregations {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		r.printAggregation(name, res.Aggregations[name])
	}
	return nil
}

// printDocument writes one document. In flat mode a "# id (score)" header is
// followed by one "path<TAB>value" line per leaf.
func (r *Runner) printDocument(id string, score *float64, source json.RawMessage) error {
	if r.config.Output == config.OutputJSON {
		return r.printJSON(id, score, source)
	}

	header := "# " + id
	if score != nil {
		header += " (" + strconv.FormatFloat(*score, 'g', -1, 64) + ")"
	}
	fmt.Fprintln(r.output, header)

	if len(source) == 0 {
		return nil
	}

	flattened, err := r.flatten(source)
	if err != nil {
		return err
	}
	for path, v := range flattened.All() {
		fmt.Fprintf(r.output, "%s\t%s\n", path, v)
	}
	return nil
}

func (r *Runner) flatten(source json.RawMessage) (*flat.Result, error) {
	var opts []flat.Option
	if r.config.Times {
		opts = append(opts, flat.WithTimes())
	}

	if r.selector == nil {
		return flat.Unmarshal(source, opts...)
	}

	nodes, err := r.selectNodes(source)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(map[string]any{selectionKey: nodes})
	if err != nil {
		return nil, err
	}
	return flat.Unmarshal(data, opts...)
}

func (r *Runner) selectNodes(source json.RawMessage) ([]any, error) {
	var doc any
	if err := json.Unmarshal(source, &doc); err != nil {
		return nil, fmt.Errorf("decode source: %w", err)
	}
	return r.selector.Select(doc), nil
}

func (r *Runner) printJSON(id string, score *float64, source json.RawMessage) error {
	doc := value.NewMap().Set("_id", id)
	if score != nil {
		doc.Set("_score", *score)
	}

	switch {
	case len(source) == 0:
	case r.selector != nil:
		nodes, err := r.selectNodes(source)
		if err != nil {
			return err
		}
		doc.Set("selected", nodes)
	default:
		var m value.Map
		if err := m.UnmarshalJSON(source); err != nil {
			return fmt.Errorf("decode source: %w", err)
		}
		doc.Set("_source", &m)
	}

	data, err := doc.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(r.output, "%s\n", data)
	return err
}

func (r *Runner) printAggregation(name string, agg *client.Aggregation) {
	fmt.Fprintln(r.output, "# aggregation "+name)
	if agg.Value != nil {
		fmt.Fprintf(r.output, "value\t%s\n", strconv.FormatFloat(*agg.Value, 'g', -1, 64))
	}
	for _, bucket := range agg.Buckets {
		fmt.Fprintf(r.output, "%s\t%d\n", bucket.Key, bucket.DocCount)
	}
}

func (r *Runner) printBulk(res *client.BulkResult) error {
	failed := res.Failed()
	fmt.Fprintf(r.output, "took %s, %d items, %d failed\n", res.Took, len(res.Items), len(failed))
	for _, item := range failed {
		fmt.Fprintf(r.output, "%s\t%s\t%d\t%s\n", item.Action, item.ID, item.Status, item.Error)
	}
	if res.Errors {
		return errors.New("bulk request had failures")
	}
	return nil
}
