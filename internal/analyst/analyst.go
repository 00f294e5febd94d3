// Package analyst streams an LLM narrative grounded on the season series of the
// current selection.
package analyst

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/pable/go-football-eda/internal/logger"
	"github.com/pable/go-football-eda/internal/model"
	"github.com/pable/go-football-eda/internal/selection"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-haiku-4-5-20251001"

// ErrNoAPIKey is returned by New when neither an explicit key nor
// ANTHROPIC_API_KEY is set.
var ErrNoAPIKey = errors.New("no API key: set ANTHROPIC_API_KEY or use --api-key")

const systemPrompt = `You are a college football analyst. You are given season-level team
statistics from an exploratory data tool and a question from the user.

Rules:
- Answer ONLY from the data provided. Never invent or estimate statistics.
- Always cite specific seasons and numbers when making a claim.
- A null value means the season had no recorded value; do not treat it as zero.
- If the data is insufficient to answer confidently, say so explicitly.
- Be concise.

Metrics glossary:
- Offensive Plays (Off.Plays): offensive snaps run in the season.
- Offensive Yards (Off.Yards): total offensive yards gained.
- Total Touchdowns (Total.TDs): touchdowns scored by any unit.
- Turnovers Lost: fumbles lost plus interceptions thrown.
- overview: per-season mean of the metric across the selected teams.
- team: the metric for one team, one point per season row.`

// Client streams answers from the Anthropic API.
type Client struct {
	api   anthropic.Client
	model string
}

// New builds a client. An empty apiKey falls back to ANTHROPIC_API_KEY and an
// empty modelID to DefaultModel.
func New(apiKey, modelID string) (*Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if modelID == "" {
		modelID = DefaultModel
	}
	return &Client{
		api:   anthropic.NewClient(option.WithAPIKey(apiKey)),
		model: modelID,
	}, nil
}

type pointEntry struct {
	Season int      `json:"season"`
	Value  *float64 `json:"value"`
}

// BuildContext serialises the selection and its series into compact JSON.
// teamSeries is omitted when sel has no team.
func BuildContext(sel selection.Selection, overview model.AggregatedSeries, teamSeries model.TeamSeries) (string, error) {
	doc := map[string]interface{}{
		"metric":   sel.Metric.Label(),
		"column":   sel.Metric.Column(),
		"teams":    append([]string{}, sel.Filter.Teams...),
		"seasons":  map[string]int{"from": sel.Filter.Seasons.Min, "to": sel.Filter.Seasons.Max},
		"overview": points(overview),
	}
	if sel.Team != "" {
		doc["team"] = map[string]interface{}{
			"name":   sel.Team,
			"series": points(teamSeries),
		}
	}
	b, err := json.Marshal(doc)
	return string(b), err
}

func points(ps []model.Point) []pointEntry {
	out := make([]pointEntry, 0, len(ps))
	for _, p := range ps {
		e := pointEntry{Season: p.Season}
		if !math.IsNaN(p.Value) && !math.IsInf(p.Value, 0) {
			v := round2(p.Value)
			e.Value = &v
		}
		out = append(out, e)
	}
	return out
}

// round2 rounds to 2 decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Stream sends the data and question to the model and copies the text deltas
// to w as they arrive.
func (c *Client) Stream(ctx context.Context, w io.Writer, dataJSON, question string) error {
	userMsg := fmt.Sprintf("DATA:\n%s\n\nQUESTION: %s", dataJSON, question)
	logger.Debug("analyst request", "model", c.model, "bytes", len(userMsg))

	stream := c.api.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userMsg)),
		},
	})

	for stream.Next() {
		evt := stream.Current()
		if evt.Type == "content_block_delta" {
			delta := evt.AsContentBlockDelta()
			if delta.Delta.Type == "text_delta" {
				fmt.Fprint(w, delta.Delta.AsTextDelta().Text)
			}
		}
	}

	if err := stream.Err(); err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "401") || strings.Contains(errStr, "authentication") {
			return fmt.Errorf("API authentication failed, check your API key")
		}
		return fmt.Errorf("streaming error: %w", err)
	}
	return nil
}
