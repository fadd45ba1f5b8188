package registry

import "github.com/rxtech-lab/recipes-mcp/internal/models"

// originalTemplates mirrors the published demo dataset: one active executable template
// superseded by a demo-only v2, plus two demo-only templates.
func originalTemplates() []models.ActionTemplate {
	return []models.ActionTemplate{
		{
			ID:         "deposit-usdc-morpho-base",
			Title:      "Deposit USDC into Morpho",
			ChainName:  "Base",
			ChainID:    8453,
			Category:   models.CategoryLending,
			Status:     models.TemplateStatusActive,
			Version:    "v1",
			Executable: true,
			ToToken:    "0x7BfA7C4f149E7415b73bdeDfe609237e29CBF34A",
			FromDefaults: &models.SourceDefaults{
				ChainID: 8453,
				Token:   "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
			},
			Intent:      "Deposit USDC to open a lending position on Morpho (Base).",
			WhatHappens: []string{"Check feasibility", "Request approvals if needed", "Execute", "Confirm position"},
			YouReceive:  "A Morpho position receipt token (per market mechanics).",
			CanFail: []models.FailureMode{
				{Code: models.FailureRouteUnavailable, Label: "No route available", UserMessage: "Try a different amount or asset."},
				{Code: models.FailureUserRejected, Label: "User rejected", UserMessage: "Transaction was rejected in your wallet."},
			},
			ReplacementID: "deposit-usdc-morpho-base-v2",
		},
		{
			ID:          "deposit-usdc-morpho-base-v2",
			Title:       "Deposit USDC into Morpho (v2)",
			ChainName:   "Base",
			ChainID:     8453,
			Category:    models.CategoryLending,
			Status:      models.TemplateStatusDemoOnly,
			Version:     "v2",
			Intent:      "Replacement template used to demonstrate versioning + migration.",
			WhatHappens: []string{"Same user intent"},
			YouReceive:  "Same receipt semantics as v1.",
			CanFail: []models.FailureMode{
				{Code: models.FailureUnknown, Label: "See v1", UserMessage: "See v1 template for representative failures."},
			},
		},
		{
			ID:        "deposit-usdc-aavev3-optimism",
			Title:     "Deposit USDC into Aave v3",
			ChainName: "Optimism",
			ChainID:   10,
			Category:  models.CategoryLending,
			Status:    models.TemplateStatusDemoOnly,
			Version:   "v1",
			Intent:    "Deposit USDC into Aave v3 to start earning yield / enable collateral.",
		},
		{
			ID:        "stake-eth-lido-ethereum",
			Title:     "Stake ETH via Lido",
			ChainName: "Ethereum",
			ChainID:   1,
			Category:  models.CategoryStaking,
			Status:    models.TemplateStatusDemoOnly,
			Version:   "v1",
			Intent:    "Stake ETH to receive stETH (liquid staking position).",
		},
	}
}
