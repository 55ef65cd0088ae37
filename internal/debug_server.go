package internal

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

//go:embed inspect.html
var templatesFS embed.FS

var (
	resumeChan  = make(chan struct{}, 1)
	currentPort int
)

type InspectRow struct {
	Key          string
	Kind         string
	Timestamp    string
	Sender       string
	Conversation string
	Detail       string
}

type RowMapper func(key string, val []byte) InspectRow
type StatsProvider func() map[string]any

type PageData struct {
	Prefix string
	Items  []InspectRow
	Stats  map[string]any
}

func Inspect(db *badger.DB, port int, endpoint string, mapper RowMapper, statsProvider StatsProvider, prefix string, fn func()) {
	StartDebugServer(db, port, endpoint, mapper, statsProvider)

	if fn != nil {
		fn()
	}

	Wait(prefix)
}

func StartDebugServer(db *badger.DB, port int, endpoint string, mapper RowMapper, statsProvider StatsProvider) {
	currentPort = port
	mux := http.NewServeMux()
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	if mapper == nil {
		mapper = MessageMapper
	}

	mux.HandleFunc(endpoint, func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = "msg:"
		}

		data := PageData{
			Prefix: prefix,
			Stats:  make(map[string]any),
		}

		if statsProvider != nil {
			data.Stats = statsProvider()
		}

		_ = db.View(func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				item := it.Item()
				_ = item.Value(func(val []byte) error {
					data.Items = append(data.Items, mapper(string(item.Key()), val))
					return nil
				})
			}
			return nil
		})

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})

	mux.HandleFunc("/resume", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-resumeChan:
		default:
		}
		resumeChan <- struct{}{}
		fmt.Fprint(w, "RESUMED")
	})

	go func() {
		_ = http.ListenAndServe(fmt.Sprintf("0.0.0.0:%d", port), mux)
	}()
}

func Wait(prefix string) {
	url := fmt.Sprintf("http://localhost:%d/inspect?prefix=%s", currentPort, prefix)
	fmt.Printf("\n--- TEST PAUSED ---\n\n%s\n\n-------------------\n", url)
	<-resumeChan
}

// MessageMapper decodes "msg:" records. The conversation bucket sits between
// the namespace and the trailing timestamp:uuid pair; dm buckets contain
// colons of their own, so parts are taken from both ends.
func MessageMapper(key string, val []byte) InspectRow {
	row := DefaultMapper(key, val)

	parts := strings.Split(key, ":")
	if len(parts) >= 4 && parts[0] == "msg" {
		row.Conversation = strings.Join(parts[1:len(parts)-2], ":")
		if tsNano, err := strconv.ParseInt(parts[len(parts)-2], 10, 64); err == nil {
			row.Timestamp = time.Unix(0, tsNano).Format("15:04:05")
		}
	}

	var record struct {
		SenderID string `json:"sender_id"`
		Body     string `json:"message"`
		Type     string `json:"attachment_type"`
	}
	if err := json.Unmarshal(val, &record); err != nil {
		return row
	}
	row.Sender = record.SenderID
	if len(row.Sender) > 8 {
		row.Sender = row.Sender[:8]
	}
	row.Detail = record.Body
	switch {
	case record.Type == "call":
		row.Kind = "CALL"
	case record.Type != "":
		row.Kind = "MEDIA"
	default:
		row.Kind = "CHAT"
	}
	return row
}

func DefaultMapper(key string, val []byte) InspectRow {
	return InspectRow{
		Key:          key,
		Kind:         "RAW",
		Timestamp:    "--:--:--",
		Sender:       "--------",
		Conversation: "default",
		Detail:       "Size: " + strconv.Itoa(len(val)) + " bytes",
	}
}
