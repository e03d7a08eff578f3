// These tests must be run serially, since the journal is coordinated by a
// single goroutine.

package journal

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/cnr-ibba/usirest/config"
)

var TESTING_DIR string

// runs all tests serially
func TestRunner(t *testing.T) {
	tester := SerialTests{Test: t}
	tester.TestInitAndFinalize()
	tester.TestInitFailsWithBadDirectory()
	tester.TestRecordCall()
	tester.TestRecordsTimeRange()
	tester.TestClosedJournal()
}

// This runs setup, runs all tests, and does breakdown.
func TestMain(m *testing.M) {
	var status int
	setup()
	status = m.Run()
	breakdown()
	os.Exit(status)
}

// this function gets called at the begining of a test session
func setup() {
	log.Print("Creating testing directory...\n")
	var err error
	TESTING_DIR, err = os.MkdirTemp(os.TempDir(), "usirest-journal-tests-")
	if err != nil {
		log.Panicf("Couldn't create testing directory: %s", err)
	}

	yaml := fmt.Sprintf("journal:\n  data_directory: %s\n", TESTING_DIR)
	err = config.Init([]byte(yaml))
	if err != nil {
		log.Panicf("Couldn't initialize configuration: %s", err)
	}
}

// this function gets called after all tests have been run
func breakdown() {
	if IsOpen() {
		Finalize()
	}
	if TESTING_DIR != "" {
		log.Printf("Deleting testing directory %s...\n", TESTING_DIR)
		os.RemoveAll(TESTING_DIR)
	}
}

// To run the tests serially, we attach them to a SerialTests type and
// have them run by a single test runner.
type SerialTests struct{ Test *testing.T }

func (t *SerialTests) TestInitAndFinalize() {
	assert := assert.New(t.Test)

	assert.False(IsOpen())
	err := Init()
	assert.Nil(err)
	assert.True(IsOpen())
	err = Finalize()
	assert.Nil(err)
	assert.False(IsOpen())
}

// an unopenable data directory must surface as an Init error, not as a
// journal that quietly never opened
func (t *SerialTests) TestInitFailsWithBadDirectory() {
	assert := assert.New(t.Test)

	yaml := "journal:\n  data_directory: /nonexistent/dir/for/tests\n"
	assert.Nil(config.Init([]byte(yaml)))

	before := runtime.NumGoroutine()
	err := Init()
	assert.NotNil(err, "An unopenable journal directory didn't trigger an error.")
	assert.IsType(&CantOpenError{}, err)
	assert.False(IsOpen())
	// the failed opener must not linger
	assert.Eventually(func() bool { return runtime.NumGoroutine() <= before },
		time.Second, 10*time.Millisecond)

	// restore the real testing directory for the remaining tests
	yaml = fmt.Sprintf("journal:\n  data_directory: %s\n", TESTING_DIR)
	assert.Nil(config.Init([]byte(yaml)))
}

func (t *SerialTests) TestRecordCall() {
	assert := assert.New(t.Test)

	err := Init()
	assert.Nil(err)

	now := time.Now()
	record := Record{
		Id:         uuid.New(),
		Method:     http.MethodGet,
		URL:        "https://submission-test.ebi.ac.uk/api/",
		StatusCode: http.StatusOK,
		StartTime:  now,
		StopTime:   now.Add(50 * time.Millisecond),
	}
	err = RecordCall(record)
	assert.Nil(err)

	records, err := Records(now.Add(-time.Second), now.Add(time.Second))
	assert.Nil(err)
	assert.Len(records, 1)
	assert.Equal(record.Id, records[0].Id)
	assert.Equal(record.Method, records[0].Method)
	assert.Equal(record.URL, records[0].URL)
	assert.Equal(record.StatusCode, records[0].StatusCode)

	err = Finalize()
	assert.Nil(err)
}

func (t *SerialTests) TestRecordsTimeRange() {
	assert := assert.New(t.Test)

	err := Init()
	assert.Nil(err)

	base := time.Now().Add(time.Hour)
	for i := 0; i < 3; i++ {
		record := Record{
			Id:         uuid.New(),
			Method:     http.MethodPost,
			URL:        fmt.Sprintf("https://example.com/api/%d", i),
			StatusCode: http.StatusCreated,
			StartTime:  base.Add(time.Duration(i) * time.Minute),
			StopTime:   base.Add(time.Duration(i)*time.Minute + time.Second),
		}
		assert.Nil(RecordCall(record))
	}

	// the bounds are inclusive
	records, err := Records(base, base.Add(time.Minute))
	assert.Nil(err)
	assert.Len(records, 2)

	// a range before every record is empty
	records, err = Records(base.Add(-2*time.Hour), base.Add(-time.Hour))
	assert.Nil(err)
	assert.Len(records, 0)

	err = Finalize()
	assert.Nil(err)
}

func (t *SerialTests) TestClosedJournal() {
	assert := assert.New(t.Test)

	assert.False(IsOpen())
	err := RecordCall(Record{Id: uuid.New()})
	assert.NotNil(err)
	assert.IsType(&NotOpenError{}, err)

	_, err = Records(time.Now().Add(-time.Hour), time.Now())
	assert.NotNil(err)
	assert.IsType(&NotOpenError{}, err)
}
