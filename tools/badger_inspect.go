package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	// Par défaut on cherche "msg:" pour éviter de percuter les index idx:
	prefix := flag.String("prefix", "msg:", "Prefix to scan")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Kind", "Timestamp", "Sender", "Conversation", "Body"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()

			// Sécurité : on ignore explicitement les index secondaires
			if strings.HasPrefix(string(item.Key()), "idx:") {
				continue
			}

			err := item.Value(func(v []byte) error {
				var record struct {
					SenderID       string `json:"sender_id"`
					Body           string `json:"message"`
					AttachmentType string `json:"attachment_type"`
					IsDeleted      bool   `json:"is_deleted"`
				}
				if err := json.Unmarshal(v, &record); err != nil {
					// Au lieu de stopper tout le script, on log l'erreur et on continue
					fmt.Printf("Error unmarshaling key %s: %v\n", string(item.Key()), err)
					return nil
				}

				kind := "CHAT"
				switch {
				case record.AttachmentType == "call":
					kind = "CALL"
				case record.IsDeleted:
					kind = "DELETED"
				case record.AttachmentType != "":
					kind = "MEDIA"
				}

				rawKey := string(item.Key())
				conversation, timestamp := parseKey(rawKey)

				// On affiche les 8 premiers caractères du sender pour la lisibilité
				displaySender := record.SenderID
				if len(displaySender) > 8 {
					displaySender = displaySender[:8]
				}

				table.Append([]string{
					rawKey,
					kind,
					timestamp,
					displaySender,
					conversation,
					record.Body,
				})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		log.Fatal(err)
	}

	table.Render()
}

// parseKey splits "msg:{conversation}:{ts}:{uuid}". Direct conversations
// contain colons, so the fixed parts are read from both ends.
func parseKey(key string) (conversation, timestamp string) {
	conversation = "-"
	timestamp = "--:--:--"

	parts := strings.Split(key, ":")
	if len(parts) < 4 {
		return
	}
	conversation = strings.Join(parts[1:len(parts)-2], ":")
	if tsNano, err := strconv.ParseInt(parts[len(parts)-2], 10, 64); err == nil {
		timestamp = time.Unix(0, tsNano).Format("15:04:05")
	}
	return
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true).
		WithValueLogFileSize(10 * 1024 * 1024)

	db, err := badger.Open(opts)
	if err != nil {
		// Si corruption détectée, essaie un open en write pour truncate
		if strings.Contains(err.Error(), "Log truncate required") {
			fmt.Println("⚠️  Move breakpoint in .Flush() method ")

			// Open en mode write pour permettre le truncate
			repairOpts := badger.DefaultOptions(path).
				WithLogger(nil).WithBypassLockGuard(true)

			db, err = badger.Open(repairOpts)
			if err != nil {
				return nil, fmt.Errorf("repair failed: %w", err)
			}

			// Ferme et réouvre en read-only
			db.Close()
			return badger.Open(opts)
		}
		return nil, err
	}
	return db, nil
}
