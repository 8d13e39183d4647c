package leaderboard

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sugawarayuuta/sonnet"
)

// nextFFrame matches one self.__next_f.push([1, "<escaped-json>"]) call
// embedded in the page's inline script. The frames are the only part of
// the page this cares about, so a regexp beats a full HTML parse.
var nextFFrame = regexp.MustCompile(`self\.__next_f\.push\(\[1,\s*"((?:[^"\\]|\\.)*)"\]\)`)

// extractNextFPayloads scans an HTML page for every streamed JSON frame,
// unescapes it, strips the "<index>:" prefix Next.js prepends, and
// returns each frame's decoded JSON array.
func extractNextFPayloads(html string) ([][]interface{}, error) {
	matches := nextFFrame.FindAllStringSubmatch(html, -1)
	if len(matches) == 0 {
		return nil, fmt.Errorf("no self.__next_f.push frames found")
	}

	var payloads [][]interface{}
	for _, m := range matches {
		unescaped, err := strconv.Unquote(`"` + m[1] + `"`)
		if err != nil {
			continue
		}

		_, body, ok := strings.Cut(unescaped, ":")
		if !ok {
			continue
		}
		body = strings.TrimSpace(body)
		if !strings.HasPrefix(body, "[") {
			continue
		}

		var arr []interface{}
		if err := sonnet.Unmarshal([]byte(body), &arr); err != nil {
			continue
		}
		payloads = append(payloads, arr)
	}

	if len(payloads) == 0 {
		return nil, fmt.Errorf("no decodable frames found")
	}
	return payloads, nil
}

// selectGamePayload finds the frame whose 4th array element is an
// object matching gameId, either at its root or inside its data arrays.
// It re-marshals the candidate element and decodes it directly into
// Payload, avoiding a field-by-field walk of the interface{} tree.
func selectGamePayload(frames [][]interface{}, gameID int64) (*Payload, error) {
	for _, frame := range frames {
		if len(frame) < 4 {
			continue
		}
		candidate, ok := frame[3].(map[string]interface{})
		if !ok {
			continue
		}
		if !candidateMatchesGame(candidate, gameID) {
			continue
		}

		raw, err := sonnet.Marshal(candidate)
		if err != nil {
			continue
		}
		var payload Payload
		if err := sonnet.Unmarshal(raw, &payload); err != nil {
			continue
		}
		return &payload, nil
	}
	return nil, fmt.Errorf("no frame matched gameId %d", gameID)
}

func candidateMatchesGame(candidate map[string]interface{}, gameID int64) bool {
	if v, ok := candidate["gameId"]; ok {
		if id, ok := toInt64(v); ok && id == gameID {
			return true
		}
	}
	for _, key := range []string{"scoreData", "transactionData"} {
		rows, ok := candidate[key].([]interface{})
		if !ok {
			continue
		}
		for _, row := range rows {
			m, ok := row.(map[string]interface{})
			if !ok {
				continue
			}
			if id, ok := toInt64(m["gameId"]); ok && id == gameID {
				return true
			}
		}
	}
	return false
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}
