package observ

import (
	"encoding/json"
	"fmt"
	"time"
)

// Log emits one JSON line per event. Fields are free-form; ts and event are
// always present.
func Log(event string, kv map[string]any) {
	if kv == nil {
		kv = map[string]any{}
	}
	kv["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	kv["event"] = event
	b, _ := json.Marshal(kv)
	fmt.Println(string(b))
}

// LogError tags the event with the error string so failures grep uniformly.
func LogError(event string, err error, kv map[string]any) {
	if kv == nil {
		kv = map[string]any{}
	}
	kv["error"] = err.Error()
	Log(event, kv)
}
