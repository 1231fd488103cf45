package ledger

import (
	"time"

	"github.com/thanhnp/bicle/internal/models"
)

// Genesis content. The hashes are fixed; TestGenesisHashes checks them
// against the hashing package.
const (
	genesisTitle     = "The Guardian 05/Nov/2025 - on the brink of a financial crisis for AIs in companies"
	genesisLink      = "https://www.theguardian.com/business/2025/nov/05/global-stock-markets-fall-sharply-over-ai-bubble-fears"
	genesisSource    = "The Guardian"
	genesisPublished = "2025-11-05"
	genesisSummary   = "Global stock markets fall sharply amid fears of an AI-driven financial bubble collapse."
	genesisIHash     = "fb3173363c3dcd1acaa3e81fb7b3fda35d5f3193e00cebc8ac96ea10803356ea"

	// GenesisHash is the blockhash of block 0
	GenesisHash = "8d7dd8a70143960bf822798ff450cf43059f849c2eaf217c98cee7f527d4e5bc"
)

var genesisTime = time.Date(2025, time.November, 5, 11, 20, 0, 0, time.UTC)

// Genesis returns a fresh copy of the fixed genesis block
func Genesis() *models.Block {
	return &models.Block{
		BlockNumber: 0,
		Timestamp:   genesisTime,
		News: []*models.LedgerEntry{{
			Title:     genesisTitle,
			Link:      genesisLink,
			Source:    genesisSource,
			Published: genesisPublished,
			Summary:   genesisSummary,
			IHash:     genesisIHash,
		}},
		BlockHash: GenesisHash,
		Previous:  nil,
	}
}
