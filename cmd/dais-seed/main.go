// Command dais-seed populates a running daisd instance with a synthetic
// competition and drives it through the full pipeline: ingest, compute,
// selection, and promotion. It exists to demo the service and to smoke-
// test a deployment end to end.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Judge score personas. Each judge draws scores from their own band so the
// seeded data exercises the z-score normalization meaningfully: a harsh
// judge and a generous judge should not distort the final ranking.
const (
	harshCeiling    = 0.6
	generousFloor   = 0.4
	requestTimeout  = 10 * time.Second
	criterionWeight = 100
)

func main() {
	var (
		addr     = flag.String("addr", "http://localhost:8080", "base URL of the daisd instance")
		teams    = flag.Int("teams", 12, "number of teams to seed")
		judges   = flag.Int("judges", 4, "number of judges to seed")
		criteria = flag.Int("criteria", 3, "number of criteria to seed")
		seed     = flag.Int64("seed", 1, "random seed for reproducible scores")
		mode     = flag.String("mode", "top_k", "selection mode: top_k or per_judge")
		limit    = flag.Int("limit", 5, "K for top_k, N for per_judge")
		promote  = flag.Bool("promote", true, "promote the selected teams into a second round")
	)
	flag.Parse()

	client := &seedClient{
		base: *addr,
		http: &http.Client{Timeout: requestTimeout},
	}
	rng := rand.New(rand.NewSource(*seed))

	sourceID := client.createRound(1, "Qualifiers")
	targetID := client.createRound(2, "Finale")
	fmt.Printf("Rounds: source=%s target=%s\n", sourceID, targetID)

	criterionIDs := client.createCriteria(sourceID, *criteria)
	judgeIDs := make([]string, *judges)
	for i := range judgeIDs {
		judgeIDs[i] = fmt.Sprintf("judge-%02d", i+1)
	}
	client.assignJudges(sourceID, judgeIDs)

	teamIDs := make([]string, *teams)
	for i := range teamIDs {
		teamIDs[i] = fmt.Sprintf("team-%02d", i+1)
	}

	// Every judge scores every team. Even-indexed judges are harsh,
	// odd-indexed generous.
	submitted := 0
	for j, judgeID := range judgeIDs {
		for _, teamID := range teamIDs {
			scores := make(map[string]float64, len(criterionIDs))
			for _, criterionID := range criterionIDs {
				raw := rng.Float64()
				if j%2 == 0 {
					raw *= harshCeiling
				} else {
					raw = generousFloor + raw*(1-generousFloor)
				}
				scores[criterionID] = raw * 10
			}
			client.saveEvaluation(sourceID, judgeID, teamID, scores)
			submitted++
		}
	}
	fmt.Printf("Seeded %d teams, %d judges, %d criteria, %d evaluations\n",
		*teams, *judges, *criteria, submitted)

	var summary struct {
		RunID         string `json:"run_id"`
		TeamCount     int    `json:"team_count"`
		JudgeCount    int    `json:"judge_count"`
		SkippedScores int    `json:"skipped_scores"`
	}
	client.post(fmt.Sprintf("/rounds/%s/compute", sourceID), nil, &summary)
	fmt.Printf("Computed run %s: %d teams ranked by %d judges (%d scores skipped)\n",
		summary.RunID, summary.TeamCount, summary.JudgeCount, summary.SkippedScores)

	paramKey := "k"
	if *mode == "per_judge" {
		paramKey = "n"
	}
	var selection struct {
		Mode    string   `json:"mode"`
		TeamIDs []string `json:"team_ids"`
	}
	client.post(fmt.Sprintf("/rounds/%s/selection", sourceID), map[string]any{
		"mode":   *mode,
		"params": map[string]any{paramKey: *limit},
	}, &selection)
	fmt.Printf("Selected %d teams via %s: %v\n", len(selection.TeamIDs), selection.Mode, selection.TeamIDs)

	if !*promote {
		return
	}
	var receipt struct {
		Promoted        int `json:"promoted"`
		AlreadyAssigned int `json:"already_assigned"`
	}
	client.post(fmt.Sprintf("/rounds/%s/promotions", sourceID), map[string]any{
		"target_round_id": targetID,
		"team_ids":        selection.TeamIDs,
		"mode":            selection.Mode,
		"params":          map[string]any{paramKey: *limit},
	}, &receipt)
	fmt.Printf("Promoted %d teams into the finale (%d were already assigned)\n",
		receipt.Promoted, receipt.AlreadyAssigned)
}

// seedClient is a minimal JSON client for the daisd API. Any non-2xx
// response aborts the run; a seeding tool has nothing sensible to do with
// partial failures.
type seedClient struct {
	base string
	http *http.Client
}

func (c *seedClient) createRound(number int, name string) string {
	var round struct {
		ID string `json:"id"`
	}
	c.post("/rounds", map[string]any{
		"id":     uuid.NewString(),
		"number": number,
		"name":   name,
	}, &round)
	return round.ID
}

func (c *seedClient) createCriteria(roundID string, count int) []string {
	entries := make([]map[string]any, count)
	for i := range entries {
		entries[i] = map[string]any{
			"id":            uuid.NewString(),
			"name":          fmt.Sprintf("Criterion %d", i+1),
			"max_marks":     10,
			"weight":        criterionWeight / float64(count),
			"display_order": i + 1,
		}
	}
	var created struct {
		Criteria []struct {
			ID string `json:"id"`
		} `json:"criteria"`
	}
	c.post(fmt.Sprintf("/rounds/%s/criteria", roundID), map[string]any{"criteria": entries}, &created)

	ids := make([]string, len(created.Criteria))
	for i, criterion := range created.Criteria {
		ids[i] = criterion.ID
	}
	return ids
}

func (c *seedClient) assignJudges(roundID string, judgeIDs []string) {
	c.post(fmt.Sprintf("/rounds/%s/judges", roundID), map[string]any{"judge_ids": judgeIDs}, nil)
}

func (c *seedClient) saveEvaluation(roundID, judgeID, teamID string, scores map[string]float64) {
	c.do(http.MethodPut, fmt.Sprintf("/rounds/%s/evaluations", roundID), map[string]any{
		"judge_id":  judgeID,
		"team_id":   teamID,
		"scores":    scores,
		"submitted": true,
	}, nil)
}

func (c *seedClient) post(path string, body, out any) {
	c.do(http.MethodPost, path, body, out)
}

func (c *seedClient) do(method, path string, body, out any) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			log.Fatalf("%s %s: encode request: %v", method, path, err)
		}
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	if err != nil {
		log.Fatalf("%s %s: build request: %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var failure struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&failure)
		log.Fatalf("%s %s: status %d: %s", method, path, resp.StatusCode, failure.Error)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			log.Fatalf("%s %s: decode response: %v", method, path, err)
		}
	}
}
