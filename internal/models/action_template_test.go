package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const (
	testMorphoToken = "0x7BfA7C4f149E7415b73bdeDfe609237e29CBF34A"
	testUSDCBase    = "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"
)

func executableTemplate(id string) ActionTemplate {
	return ActionTemplate{
		ID:         id,
		Title:      "Deposit USDC into Morpho",
		ChainID:    8453,
		ChainName:  "Base",
		Category:   CategoryLending,
		Status:     TemplateStatusActive,
		Version:    "v1",
		Executable: true,
		ToToken:    testMorphoToken,
		FromDefaults: &SourceDefaults{
			ChainID: 8453,
			Token:   testUSDCBase,
		},
		Intent:      "Deposit USDC to open a lending position on Morpho (Base).",
		WhatHappens: []string{"Check feasibility", "Execute"},
		YouReceive:  "A Morpho position receipt token.",
		CanFail: []FailureMode{
			{Code: FailureRouteUnavailable, Label: "No route available", UserMessage: "Try a different amount."},
		},
	}
}

func demoTemplate(id string) ActionTemplate {
	return ActionTemplate{
		ID:       id,
		Title:    "Stake ETH via Lido",
		ChainID:  1,
		Category: CategoryStaking,
		Status:   TemplateStatusDemoOnly,
		Version:  "v1",
		Intent:   "Stake ETH to receive stETH.",
	}
}

func TestParseEnums(t *testing.T) {
	status, err := ParseTemplateStatus("demo-only")
	require.NoError(t, err)
	assert.Equal(t, TemplateStatusDemoOnly, status)

	_, err = ParseTemplateStatus("retired")
	assert.ErrorIs(t, err, ErrUnknownEnumValue)

	category, err := ParseCategory("Vault")
	require.NoError(t, err)
	assert.Equal(t, CategoryVault, category)

	_, err = ParseCategory("lending")
	assert.ErrorIs(t, err, ErrUnknownEnumValue, "category matching is case sensitive")

	for _, code := range FailureCodes() {
		parsed, err := ParseFailureCode(string(code))
		require.NoError(t, err)
		assert.Equal(t, code, parsed)
	}
	_, err = ParseFailureCode("TIMEOUT")
	assert.ErrorIs(t, err, ErrUnknownEnumValue)
}

func TestActionTemplate_UnmarshalRejectsUnknownEnums(t *testing.T) {
	t.Run("json_status", func(t *testing.T) {
		var tmpl ActionTemplate
		err := json.Unmarshal([]byte(`{"id":"a","status":"paused"}`), &tmpl)
		assert.ErrorIs(t, err, ErrUnknownEnumValue)
	})

	t.Run("json_failure_code", func(t *testing.T) {
		var tmpl ActionTemplate
		err := json.Unmarshal([]byte(`{"id":"a","canFail":[{"code":"NOPE","label":"x","userMessage":"y"}]}`), &tmpl)
		assert.ErrorIs(t, err, ErrUnknownEnumValue)
	})

	t.Run("yaml_category", func(t *testing.T) {
		var tmpl ActionTemplate
		err := yaml.Unmarshal([]byte("id: a\ncategory: Farming\n"), &tmpl)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Farming")
	})

	t.Run("yaml_valid", func(t *testing.T) {
		var tmpl ActionTemplate
		doc := `
id: stake
title: Stake
chainId: 1
category: Staking
status: active
intent: Stake it
canFail:
  - code: USER_REJECTED
    label: Rejected
    userMessage: Transaction rejected in wallet.
`
		require.NoError(t, yaml.Unmarshal([]byte(doc), &tmpl))
		assert.Equal(t, CategoryStaking, tmpl.Category)
		assert.Equal(t, TemplateStatusActive, tmpl.Status)
		assert.Equal(t, FailureUserRejected, tmpl.CanFail[0].Code)
	})
}

func TestValidateTemplate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ActionTemplate)
		wantErr error
	}{
		{
			name:   "valid_executable",
			mutate: func(*ActionTemplate) {},
		},
		{
			name:    "executable_without_to_token",
			mutate:  func(tmpl *ActionTemplate) { tmpl.ToToken = "" },
			wantErr: ErrMissingToToken,
		},
		{
			name:    "executable_without_failure_modes",
			mutate:  func(tmpl *ActionTemplate) { tmpl.CanFail = nil },
			wantErr: ErrNoFailureModes,
		},
		{
			name:    "bad_to_token",
			mutate:  func(tmpl *ActionTemplate) { tmpl.ToToken = "0x1234" },
			wantErr: ErrInvalidTemplate,
		},
		{
			name:    "bad_source_token",
			mutate:  func(tmpl *ActionTemplate) { tmpl.FromDefaults.Token = "usdc" },
			wantErr: ErrInvalidTemplate,
		},
		{
			name:    "missing_title",
			mutate:  func(tmpl *ActionTemplate) { tmpl.Title = "" },
			wantErr: ErrInvalidTemplate,
		},
		{
			name:    "unknown_status_constructed_in_code",
			mutate:  func(tmpl *ActionTemplate) { tmpl.Status = "paused" },
			wantErr: ErrInvalidTemplate,
		},
		{
			name:    "unknown_failure_code_constructed_in_code",
			mutate:  func(tmpl *ActionTemplate) { tmpl.CanFail[0].Code = "NOPE" },
			wantErr: ErrInvalidTemplate,
		},
		{
			name:    "self_replacement",
			mutate:  func(tmpl *ActionTemplate) { tmpl.ReplacementID = tmpl.ID },
			wantErr: ErrSelfReplacement,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := executableTemplate("a")
			tt.mutate(&tmpl)
			err := ValidateTemplate(tmpl)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateTemplate_NonExecutableNeedsNoFailureModes(t *testing.T) {
	assert.NoError(t, ValidateTemplate(demoTemplate("lido")))
}

func TestValidateTemplateSet(t *testing.T) {
	t.Run("duplicate_ids", func(t *testing.T) {
		err := ValidateTemplateSet([]ActionTemplate{executableTemplate("a"), demoTemplate("a")})
		assert.ErrorIs(t, err, ErrDuplicateTemplateID)
	})

	t.Run("dangling_replacement_on_deprecated", func(t *testing.T) {
		deprecated := executableTemplate("a")
		deprecated.Status = TemplateStatusDeprecated
		deprecated.ReplacementID = "ghost"
		err := ValidateTemplateSet([]ActionTemplate{deprecated})
		assert.ErrorIs(t, err, ErrDanglingReplacement)
	})

	t.Run("resolvable_replacement", func(t *testing.T) {
		deprecated := executableTemplate("a")
		deprecated.Status = TemplateStatusDeprecated
		deprecated.ReplacementID = "b"
		err := ValidateTemplateSet([]ActionTemplate{deprecated, demoTemplate("b")})
		assert.NoError(t, err)
	})

	t.Run("collects_every_problem", func(t *testing.T) {
		broken := executableTemplate("a")
		broken.ToToken = ""
		broken.CanFail = nil
		err := ValidateTemplateSet([]ActionTemplate{broken, demoTemplate("b"), demoTemplate("b")})
		require.Error(t, err)

		var verrs ValidationErrors
		require.True(t, errors.As(err, &verrs))
		assert.Len(t, verrs, 3)
		assert.True(t, strings.HasPrefix(err.Error(), "3 validation error(s)"))
	})
}

func TestActionTemplate_FailureMessage(t *testing.T) {
	tmpl := executableTemplate("a")

	own := tmpl.FailureMessage(FailureRouteUnavailable)
	assert.Equal(t, "Try a different amount.", own.UserMessage)

	fallback := tmpl.FailureMessage(FailureInsufficientFunds)
	assert.Equal(t, FailureInsufficientFunds, fallback.Code)
	assert.NotEmpty(t, fallback.Label)
	assert.NotEmpty(t, fallback.UserMessage)

	unknown := tmpl.FailureMessage("NOT_A_CODE")
	assert.Equal(t, FailureUnknown, unknown.Code)
}

func TestDefaultFailureMode_CoversTaxonomy(t *testing.T) {
	for _, code := range FailureCodes() {
		mode := DefaultFailureMode(code)
		assert.Equal(t, code, mode.Code)
		assert.NotEmpty(t, mode.Label, code)
		assert.NotEmpty(t, mode.UserMessage, code)
	}
}

func TestActionTemplate_Clone(t *testing.T) {
	original := executableTemplate("a")
	clone := original.Clone()

	clone.WhatHappens[0] = "changed"
	clone.CanFail[0].Label = "changed"
	clone.FromDefaults.ChainID = 10

	assert.Equal(t, "Check feasibility", original.WhatHappens[0])
	assert.Equal(t, "No route available", original.CanFail[0].Label)
	assert.Equal(t, uint64(8453), original.FromDefaults.ChainID)
}

func TestActionTemplate_Normalize(t *testing.T) {
	tmpl := executableTemplate("a")
	tmpl.ToToken = strings.ToLower(testMorphoToken)
	tmpl.FromDefaults.Token = strings.ToLower(testUSDCBase)

	tmpl.Normalize()

	assert.Equal(t, common.HexToAddress(testMorphoToken).Hex(), tmpl.ToToken)
	assert.Equal(t, common.HexToAddress(testUSDCBase).Hex(), tmpl.FromDefaults.Token)

	invalid := executableTemplate("b")
	invalid.ToToken = "not-an-address"
	invalid.Normalize()
	assert.Equal(t, "not-an-address", invalid.ToToken)
}

func TestJSON_ValueScan(t *testing.T) {
	var empty JSON
	value, err := empty.Value()
	require.NoError(t, err)
	assert.Nil(t, value)

	payload := JSON{"id": "a", "simulated": true}
	value, err = payload.Value()
	require.NoError(t, err)

	var scanned JSON
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, "a", scanned["id"])
	assert.Equal(t, true, scanned["simulated"])

	require.NoError(t, scanned.Scan(""))
	assert.Nil(t, scanned)

	assert.Error(t, scanned.Scan(123))
	assert.Equal(t, `{"id":"a"}`, JSON{"id": "a"}.String())
	assert.Equal(t, "", JSON{"bad": func() {}}.String())
}
