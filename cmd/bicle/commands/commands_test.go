package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/thanhnp/bicle/internal/ledger"
	"github.com/thanhnp/bicle/internal/models"
	"github.com/thanhnp/bicle/internal/storage"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, dataDir string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  backend: json\n  dir: "+dataDir+"\nlog:\n  level: error\n"), 0644))
	return path
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	require.Contains(t, out, "bicle "+Version)
	require.Contains(t, out, "store format "+storage.FormatVersion)
}

func TestVerifyFreshChain(t *testing.T) {
	cfg := writeConfig(t, t.TempDir())

	out, err := run(t, "--config", cfg, "verify")
	require.NoError(t, err)
	require.Contains(t, out, "VALID: 1 blocks, tip "+ledger.GenesisHash)
}

func TestVerifyBrokenChain(t *testing.T) {
	dataDir := t.TempDir()
	gw, err := storage.NewFileGateway(dataDir)
	require.NoError(t, err)

	prev := ledger.GenesisHash
	require.NoError(t, gw.SaveBlocks([]*models.Block{
		ledger.Genesis(),
		{
			BlockNumber: 1,
			Timestamp:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			News:        []*models.LedgerEntry{{Title: "t", Link: "https://x.test", IHash: "ab"}},
			BlockHash:   "not-the-hash",
			Previous:    &prev,
		},
	}))

	out, err := run(t, "--config", writeConfig(t, dataDir), "verify")
	var ie *ledger.IntegrityError
	require.ErrorAs(t, err, &ie)
	require.Equal(t, 1, ie.Index)
	require.Contains(t, out, "INVALID: block #1 (index 1): invalid blockhash")
}

func TestExport(t *testing.T) {
	cfg := writeConfig(t, t.TempDir())
	target := filepath.Join(t.TempDir(), "chain.json")

	out, err := run(t, "--config", cfg, "export", "-o", target)
	require.NoError(t, err)
	require.Contains(t, out, "Exported 1 blocks")

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	var blocks []models.Block
	require.NoError(t, json.Unmarshal(data, &blocks))
	require.Len(t, blocks, 1)
	require.Equal(t, ledger.GenesisHash, blocks[0].BlockHash)
}

func TestExportFlagsDoNotLeak(t *testing.T) {
	cfg := writeConfig(t, t.TempDir())
	target := filepath.Join(t.TempDir(), "chain.json")

	_, err := run(t, "--config", cfg, "export", "-o", target)
	require.NoError(t, err)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer os.Chdir(cwd)

	out, err := run(t, "--config", cfg, "export")
	require.NoError(t, err)
	require.NotContains(t, out, target)
	require.Contains(t, out, "bicle_blockchain_")
}

func TestInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mining:\n  max_news: 0\n"), 0644))

	_, err := run(t, "--config", path, "verify")
	require.Error(t, err)
	require.Contains(t, err.Error(), "mining.max_news")
}
