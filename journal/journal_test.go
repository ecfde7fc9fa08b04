package journal_test

import (
	"path/filepath"
	"testing"

	"github.com/sbomtools/bomsync/hamlet"
	"github.com/sbomtools/bomsync/journal"
)

func TestJournalCanBeCalled(t *testing.T) {
	must_be, wont_be := hamlet.Specifications(t)

	must_be.Equal("foo bar", journal.Unify("  foo  \t  \r\n   bar  "))

	journal.UseLocation(filepath.Join(t.TempDir(), "test.journal"))
	defer journal.UseLocation("")

	must_be.Nil(journal.Post("upload", "journal-1", "from journal/journal_test.go"))
	events, err := journal.Events()
	must_be.Nil(err)
	wont_be.Nil(events)
	must_be.True(len(events) > 0)
	must_be.Nil(journal.Post("upload", "journal-2", "from journal/journal_test.go"))
	second, err := journal.Events()
	must_be.Nil(err)
	must_be.True(len(second) > len(events))
	must_be.Equal("journal-2", second[len(second)-1].Detail)
}
