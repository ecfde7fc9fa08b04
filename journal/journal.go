// Package journal keeps an append-only record of what each run did,
// one JSON line per event, so pipeline activity can be audited later.
package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/sbomtools/bomsync/common"
)

const defaultLocation = "bomsync.journal"

var (
	guard    sync.Mutex
	location = defaultLocation
)

// Event is one journaled happening.
type Event struct {
	When    int64  `json:"when"`
	Agent   string `json:"agent"`
	Event   string `json:"event"`
	Detail  string `json:"detail"`
	Comment string `json:"comment,omitempty"`
}

// UseLocation points the journal at another file. Empty resets to the
// default next to the working directory.
func UseLocation(filename string) {
	guard.Lock()
	defer guard.Unlock()
	if len(filename) == 0 {
		location = defaultLocation
		return
	}
	location = filename
}

// Unify collapses any whitespace runs into single spaces.
func Unify(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// Post appends one event. Journaling trouble is reported but never
// breaks the run that tried to record itself.
func Post(event, detail, commentForm string, fields ...interface{}) error {
	entry := Event{
		When:    common.When,
		Agent:   common.UserAgent(),
		Event:   Unify(event),
		Detail:  Unify(detail),
		Comment: Unify(fmt.Sprintf(commentForm, fields...)),
	}
	blob, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	guard.Lock()
	defer guard.Unlock()
	sink, err := os.OpenFile(location, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		common.Uncritical("journal.open", err)
		return err
	}
	defer sink.Close()
	_, err = fmt.Fprintln(sink, string(blob))
	if err != nil {
		common.Uncritical("journal.write", err)
	}
	return err
}

// Events reads the whole journal back in posting order. Lines that do
// not parse are skipped, not fatal: the journal favors availability
// over strictness.
func Events() ([]Event, error) {
	guard.Lock()
	defer guard.Unlock()
	source, err := os.Open(location)
	if err != nil {
		return nil, err
	}
	defer source.Close()
	events := []Event{}
	scanner := bufio.NewScanner(source)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 {
			continue
		}
		event := Event{}
		if json.Unmarshal([]byte(line), &event) != nil {
			continue
		}
		events = append(events, event)
	}
	return events, scanner.Err()
}
