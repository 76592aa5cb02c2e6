package history

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goRWAd/internal/core/tx"
)

func openJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func entry(seq uint64, txType, account, result string) tx.JournalEntry {
	return tx.JournalEntry{
		Seq:       seq,
		TxType:    txType,
		Account:   account,
		Result:    result,
		CloseTime: 1_700_000_000 + int64(seq),
		Payload:   []byte(`{"Account":"` + account + `"}`),
	}
}

func TestJournalRecordAndRead(t *testing.T) {
	j := openJournal(t)

	require.NoError(t, j.Record(entry(1, "VaultDeposit", "alice", "tesSUCCESS")))
	require.NoError(t, j.Record(entry(2, "OfferingClaim", "bob", "tecALREADY_CLAIMED")))

	e, err := j.Entry(2)
	require.NoError(t, err)
	assert.Equal(t, "OfferingClaim", e.TxType)
	assert.Equal(t, "bob", e.Account)
	assert.Equal(t, "tecALREADY_CLAIMED", e.Result)
	assert.NotEmpty(t, e.Payload)

	_, err = j.Entry(99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJournalLastSeq(t *testing.T) {
	j := openJournal(t)

	last, err := j.LastSeq()
	require.NoError(t, err)
	assert.Zero(t, last)

	require.NoError(t, j.Record(entry(1, "VaultCreate", "admin", "tesSUCCESS")))
	require.NoError(t, j.Record(entry(2, "VaultDeposit", "alice", "tesSUCCESS")))

	last, err = j.LastSeq()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), last)
}

func TestJournalRange(t *testing.T) {
	j := openJournal(t)
	for seq := uint64(1); seq <= 5; seq++ {
		require.NoError(t, j.Record(entry(seq, "VaultDeposit", "alice", "tesSUCCESS")))
	}

	entries, err := j.Range(2, 4)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, uint64(2), entries[0].Seq)
	assert.Equal(t, uint64(4), entries[2].Seq)
}

func TestJournalByAccount(t *testing.T) {
	j := openJournal(t)
	require.NoError(t, j.Record(entry(1, "VaultDeposit", "alice", "tesSUCCESS")))
	require.NoError(t, j.Record(entry(2, "VaultDeposit", "bob", "tesSUCCESS")))
	require.NoError(t, j.Record(entry(3, "VaultRedeem", "alice", "tesSUCCESS")))

	entries, err := j.ByAccount("alice", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, uint64(3), entries[0].Seq, "most recent first")

	entries, err = j.ByAccount("alice", 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestJournalDuplicateSeqRejected(t *testing.T) {
	j := openJournal(t)
	require.NoError(t, j.Record(entry(1, "VaultDeposit", "alice", "tesSUCCESS")))
	assert.Error(t, j.Record(entry(1, "VaultDeposit", "alice", "tesSUCCESS")))
}
