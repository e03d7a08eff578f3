// Copyright (c) 2026 The usirest Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do
// so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package journal

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/cnr-ibba/usirest/config"
)

// This is the client's activity journal, which logs all API calls issued
// through a session. The journal is optional: it opens only when Init is
// called with a journal data directory configured, and recording is a no-op
// while it is closed.

// a record storing all information relevant to a single API call
type Record struct {
	// UUID associated with the call
	Id uuid.UUID `json:"id"`
	// the HTTP verb and target URL of the call
	Method string `json:"method"`
	URL    string `json:"url"`
	// the status code of the response
	StatusCode int `json:"status_code"`
	// times at which the call was issued and at which its response arrived
	StartTime time.Time `json:"start_time"`
	StopTime  time.Time `json:"stop_time"`
}

// opens the activity journal
func Init() error {
	if config.Journal.DataDirectory == "" {
		return &NotConfiguredError{}
	}
	if !IsOpen() {
		// the goroutine reports whether it could open the database on this
		// dedicated channel, so a failed open can't be mistaken for success
		opened := make(chan error)
		go journalProcess(opened)
		return <-opened
	}
	return nil
}

// saves and closes the activity journal (if it's been opened)
func Finalize() error {
	if IsOpen() {
		channels_.Input.Shutdown <- struct{}{}
		closeChannels()
	}
	return nil
}

// returns true if the journal is open for writing, false if not
func IsOpen() bool {
	if channels_.Open { // has Init() been called?
		channels_.Input.CheckIfOpen <- struct{}{}
		select {
		case isOpen := <-channels_.Output.IsOpen:
			return isOpen
		case <-time.After(1 * time.Second): // after a second, we assume the goroutine has crashed
			closeChannels()
			return false
		}
	}
	return false
}

// records a completed API call
func RecordCall(record Record) error {
	if !IsOpen() {
		return &NotOpenError{}
	}
	channels_.Input.CreateRecord <- record
	return <-channels_.Output.Error
}

// retrieves records for calls issued within the time range with the given
// (inclusive) bounds
func Records(start, stop time.Time) ([]Record, error) {
	if !IsOpen() {
		return nil, &NotOpenError{}
	}
	channels_.Input.FetchRecords <- TimeRange{Start: start, Stop: stop}
	select {
	case records := <-channels_.Output.Records:
		return records, nil
	case err := <-channels_.Output.Error:
		return nil, err
	}
}

//-----------
// Internals
//-----------

// The journal gets its own goroutine so a storage failure can't take the
// calling client down with it. Here we define "input" channels (caller ->
// goroutine) and "output" channels (goroutine -> caller) for passing data
// back and forth

type TimeRange struct {
	Start, Stop time.Time
}

var channels_ struct {
	Open  bool // true if channels are open, false if not
	Input struct {
		CreateRecord chan Record    // for creating new records
		CheckIfOpen  chan struct{}  // for checking to see whether the database is open
		FetchRecords chan TimeRange // for fetching records within a time range
		Shutdown     chan struct{}  // for shutting down the database
	}

	Output struct {
		Records chan []Record // for returning records
		Error   chan error    // for returning errors
		IsOpen  chan bool     // for answering queries about whether the database is open
	}
}

func journalProcess(opened chan<- error) {

	// open the database, creating the schema if necessary
	dbPath := filepath.Join(config.Journal.DataDirectory, "activity.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		opened <- &CantOpenError{
			Message: err.Error(),
		}
		return
	}

	// set up the bucket for call records
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte("calls"))
		return err
	}); err != nil {
		db.Close()
		opened <- &CantOpenError{
			Message: err.Error(),
		}
		return
	}

	openChannels()
	opened <- nil

	// handle requests
	running := true
	for running {
		select {

		case <-channels_.Input.CheckIfOpen:
			channels_.Output.IsOpen <- true // always true if this goroutine is running!

		case record := <-channels_.Input.CreateRecord:
			channels_.Output.Error <- createRecord(db, record)

		case timeRange := <-channels_.Input.FetchRecords:
			records, err := fetchRecords(db, timeRange.Start, timeRange.Stop)
			if err != nil {
				channels_.Output.Error <- err
			} else {
				channels_.Output.Records <- records
			}

		case <-channels_.Input.Shutdown:
			err := db.Close()
			if err != nil {
				channels_.Output.Error <- &CantCloseError{
					Message: err.Error(),
				}
			}
			running = false
		}
	}
}

func openChannels() {
	channels_.Open = true
	channels_.Input.CreateRecord = make(chan Record)
	channels_.Input.CheckIfOpen = make(chan struct{})
	channels_.Input.FetchRecords = make(chan TimeRange)
	channels_.Input.Shutdown = make(chan struct{})
	channels_.Output.Records = make(chan []Record)
	channels_.Output.Error = make(chan error)
	channels_.Output.IsOpen = make(chan bool)
}

func closeChannels() {
	channels_.Open = false
	close(channels_.Input.CreateRecord)
	close(channels_.Input.CheckIfOpen)
	close(channels_.Input.FetchRecords)
	close(channels_.Input.Shutdown)
	close(channels_.Output.Records)
	close(channels_.Output.Error)
	close(channels_.Output.IsOpen)
}

func createRecord(db *bolt.DB, record Record) error {
	// records are indexed by start time; the UUID suffix keeps calls issued
	// within the same nanosecond from clobbering each other
	key := record.StartTime.Format(time.RFC3339Nano) + "/" + record.Id.String()

	jsonBytes, err := json.Marshal(&record)
	if err != nil {
		return &NewRecordError{
			Id:      record.Id,
			Message: err.Error(),
		}
	}
	return db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte("calls"))
		return bucket.Put([]byte(key), jsonBytes)
	})
}

func fetchRecords(db *bolt.DB, start, stop time.Time) ([]Record, error) {
	records := make([]Record, 0)
	err := db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte("calls")).Cursor()

		startKey := []byte(start.Format(time.RFC3339Nano))
		// '0' sorts after the '/' separating a timestamp from its UUID suffix,
		// so this bound is inclusive of every record at the stop time itself
		stopKey := []byte(stop.Format(time.RFC3339Nano) + "0")

		for k, v := c.Seek(startKey); k != nil && bytes.Compare(k, stopKey) <= 0; k, v = c.Next() {
			var record Record
			if err := json.Unmarshal(v, &record); err != nil {
				return &InvalidRecordError{
					Message: err.Error(),
				}
			}
			records = append(records, record)
		}
		return nil
	})

	return records, err
}
