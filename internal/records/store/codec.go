// Package store persists the contract state as a single JSON document.
// Every backend loads through DecodeState, so legacy flat-array documents are
// upgraded transparently, with stable identifiers, and written back in the
// unified shape on the next commit.
package store

import (
	"encoding/json"
	"fmt"

	"ansdns/internal/records/models"
)

func decode(data []byte) (*models.ContractState, error) {
	state, _, err := models.DecodeState(data)
	if err != nil {
		return nil, err
	}
	return state, nil
}

func encode(state *models.ContractState) ([]byte, error) {
	if state == nil {
		return nil, fmt.Errorf("state is required")
	}
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return data, nil
}
