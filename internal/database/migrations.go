package database

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Giftea/skillbazaar/internal/models"
	"github.com/Giftea/skillbazaar/pkg/logger"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Skill{},
	)
}

// bootstrapCatalog is the fixed set of first-party skills seeded at start-up.
// The publisher wallet is the operator's own payout address.
func bootstrapCatalog(publisherWallet string) []models.Skill {
	return []models.Skill{
		{
			Name:            "contract-auditor",
			Description:     "Audit a smart contract address for known vulnerabilities and risk signals",
			Endpoint:        "http://localhost:4001/audit/:address",
			PriceUSD:        0.05,
			PublisherWallet: publisherWallet,
			Category:        "web3",
			Port:            4001,
		},
		{
			Name:            "wallet-scorer",
			Description:     "Score a wallet address for transaction patterns, age, and risk",
			Endpoint:        "http://localhost:4002/score/:address",
			PriceUSD:        0.03,
			PublisherWallet: publisherWallet,
			Category:        "web3",
			Port:            4002,
		},
		{
			Name:            "gas-estimator",
			Description:     "Get current Base network gas prices and transaction cost estimates",
			Endpoint:        "http://localhost:4003/gas",
			PriceUSD:        0.02,
			PublisherWallet: publisherWallet,
			Category:        "web3",
			Port:            4003,
		},
		{
			Name:            "ens-resolver",
			Description:     "Resolve ENS names to addresses or reverse lookup addresses to ENS names on Ethereum mainnet",
			Endpoint:        "http://localhost:4004/resolve/:ensOrAddress",
			PriceUSD:        0.02,
			PublisherWallet: publisherWallet,
			Category:        "web3",
			Port:            4004,
		},
	}
}

// SeedSkills inserts the bootstrap catalog. Seeding is idempotent: names that
// already exist are left untouched, so operator edits and accumulated usage
// counters survive restarts. Each newly created name is logged exactly once.
func SeedSkills(db *gorm.DB) error {
	wallet := strings.TrimSpace(os.Getenv("SKILLBAZAAR_PAYMENT_ADDRESS"))
	log := logger.WithModule("registry")

	for _, skill := range bootstrapCatalog(wallet) {
		var existing models.Skill
		result := db.Where(models.Skill{Name: skill.Name}).Attrs(skill).FirstOrCreate(&existing)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			log.Info("seeded skill", zap.String("name", skill.Name))
		}
	}

	return nil
}
