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
	"github.com/olekukonko/tablewriter"

	"chat-sync/domain"
)

// Standalone inspector for the local message cache. Opens the store
// read-only, so it can run next to a live engine.
func main() {
	dbPath := flag.String("db", "/tmp/chat-sync/badger", "Path to badger DB")
	prefix := flag.String("prefix", "msg:", "Prefix to scan")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Room", "Timestamp", "Message ID", "Role", "Author", "Text"})
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

			err := item.Value(func(v []byte) error {
				rawKey := string(item.Key())

				if strings.HasPrefix(rawKey, "profile:") {
					return nil
				}

				var msg domain.Message
				if err := json.Unmarshal(v, &msg); err != nil {
					// Log the bad row and keep scanning instead of aborting.
					fmt.Printf("Error unmarshaling key %s: %v\n", rawKey, err)
					return nil
				}

				stamp := "--:--:--"
				parts := strings.Split(rawKey, ":")
				if len(parts) >= 4 {
					if tsMilli, err := strconv.ParseInt(parts[2], 10, 64); err == nil {
						stamp = time.UnixMilli(tsMilli).Format("15:04:05")
					}
				}

				displayID := msg.ID
				if len(displayID) > 8 {
					displayID = displayID[:8]
				}

				table.Append([]string{
					rawKey,
					msg.Room,
					stamp,
					displayID,
					string(msg.Role),
					msg.AuthorName,
					msg.Text,
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

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)
	return badger.Open(opts)
}
