package ledger

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// AccountScope represents the top-level account namespace
type AccountScope uint8

const (
	AccountScopeUser AccountScope = iota
	AccountScopeVault
	AccountScopeExternal
)

// AccountSubType represents the account purpose
type AccountSubType uint8

const (
	// User sub-types
	SubTypeWallet AccountSubType = iota

	// Vault sub-types (protocol custody)
	SubTypeEscrowPrincipal
	SubTypeEscrowCollateral
	SubTypeFeeSink

	// External sub-types (boundary with the outside world)
	SubTypeExternalDeposits
)

// AssetID maps asset identifiers to numeric IDs for compact keys.
// IDs are assigned from the registry's supported-asset list at
// initialization, in list order, starting at 1.
type AssetID uint16

var (
	assetToID = map[string]AssetID{}
	idToAsset = map[AssetID]string{}
)

// RegisterAssets installs the asset table. Called once on protocol
// initialization (and again on snapshot restore, with the same list —
// assignment is order-deterministic).
func RegisterAssets(symbols []string) {
	assetToID = make(map[string]AssetID, len(symbols))
	idToAsset = make(map[AssetID]string, len(symbols))
	for i, s := range symbols {
		id := AssetID(i + 1)
		assetToID[s] = id
		idToAsset[id] = s
	}
}

func GetAssetID(asset string) (AssetID, bool) {
	id, ok := assetToID[asset]
	return id, ok
}

func GetAssetName(id AssetID) (string, bool) {
	name, ok := idToAsset[id]
	return name, ok
}

// AccountKey is the in-memory key for balance tracking (20 bytes, map-friendly)
type AccountKey struct {
	Scope    AccountScope
	EntityID [16]byte // UUID for users, shard index for fee sinks, zero otherwise
	SubType  AccountSubType
	AssetID  AssetID
}

// NewWalletKey creates a key for a user wallet.
func NewWalletKey(userID uuid.UUID, assetID AssetID) AccountKey {
	return AccountKey{
		Scope:    AccountScopeUser,
		EntityID: userID,
		SubType:  SubTypeWallet,
		AssetID:  assetID,
	}
}

// NewEscrowKey creates a key for a protocol custody account. subType must
// be SubTypeEscrowPrincipal or SubTypeEscrowCollateral; custody is per
// asset, shared across shards.
func NewEscrowKey(subType AccountSubType, assetID AssetID) AccountKey {
	return AccountKey{
		Scope:   AccountScopeVault,
		SubType: subType,
		AssetID: assetID,
	}
}

// NewFeeSinkKey creates a key for one shard's fee sink.
func NewFeeSinkKey(shardID uint64, assetID AssetID) AccountKey {
	var entityID [16]byte
	binary.LittleEndian.PutUint64(entityID[:8], shardID)
	return AccountKey{
		Scope:    AccountScopeVault,
		EntityID: entityID,
		SubType:  SubTypeFeeSink,
		AssetID:  assetID,
	}
}

// NewExternalDepositsKey creates the boundary account deposits flow in from.
func NewExternalDepositsKey(assetID AssetID) AccountKey {
	return AccountKey{
		Scope:   AccountScopeExternal,
		SubType: SubTypeExternalDeposits,
		AssetID: assetID,
	}
}

// AccountPath returns the string representation for storage/logging
func (k AccountKey) AccountPath() string {
	assetName, _ := GetAssetName(k.AssetID)

	switch k.Scope {
	case AccountScopeUser:
		uid := uuid.UUID(k.EntityID)
		return fmt.Sprintf("user:%s:%s:%s", uid.String(), k.subTypeName(), assetName)
	case AccountScopeVault:
		if k.SubType == SubTypeFeeSink {
			shardID := binary.LittleEndian.Uint64(k.EntityID[:8])
			return fmt.Sprintf("vault:fee_sink:%d:%s", shardID, assetName)
		}
		return fmt.Sprintf("vault:%s:%s", k.subTypeName(), assetName)
	case AccountScopeExternal:
		return fmt.Sprintf("external:%s:%s", k.subTypeName(), assetName)
	}
	return "unknown"
}

// ParseAccountPath inverts AccountPath. Snapshot balances are stored keyed
// by path; restore rebuilds the compact keys from them. The asset table must
// be registered before parsing.
func ParseAccountPath(path string) (AccountKey, error) {
	parts := strings.Split(path, ":")

	switch {
	case len(parts) == 4 && parts[0] == "user" && parts[2] == "wallet":
		uid, err := uuid.Parse(parts[1])
		if err != nil {
			return AccountKey{}, fmt.Errorf("parse account path %q: %w", path, err)
		}
		assetID, ok := GetAssetID(parts[3])
		if !ok {
			return AccountKey{}, fmt.Errorf("parse account path %q: unknown asset", path)
		}
		return NewWalletKey(uid, assetID), nil

	case len(parts) == 4 && parts[0] == "vault" && parts[1] == "fee_sink":
		shardID, err := strconv.ParseUint(parts[2], 10, 64)
		if err != nil {
			return AccountKey{}, fmt.Errorf("parse account path %q: %w", path, err)
		}
		assetID, ok := GetAssetID(parts[3])
		if !ok {
			return AccountKey{}, fmt.Errorf("parse account path %q: unknown asset", path)
		}
		return NewFeeSinkKey(shardID, assetID), nil

	case len(parts) == 3 && parts[0] == "vault":
		assetID, ok := GetAssetID(parts[2])
		if !ok {
			return AccountKey{}, fmt.Errorf("parse account path %q: unknown asset", path)
		}
		switch parts[1] {
		case "escrow_principal":
			return NewEscrowKey(SubTypeEscrowPrincipal, assetID), nil
		case "escrow_collateral":
			return NewEscrowKey(SubTypeEscrowCollateral, assetID), nil
		}

	case len(parts) == 3 && parts[0] == "external" && parts[1] == "deposits":
		assetID, ok := GetAssetID(parts[2])
		if !ok {
			return AccountKey{}, fmt.Errorf("parse account path %q: unknown asset", path)
		}
		return NewExternalDepositsKey(assetID), nil
	}

	return AccountKey{}, fmt.Errorf("parse account path %q: unrecognized format", path)
}

func (k AccountKey) subTypeName() string {
	switch k.SubType {
	case SubTypeWallet:
		return "wallet"
	case SubTypeEscrowPrincipal:
		return "escrow_principal"
	case SubTypeEscrowCollateral:
		return "escrow_collateral"
	case SubTypeFeeSink:
		return "fee_sink"
	case SubTypeExternalDeposits:
		return "deposits"
	default:
		return "unknown"
	}
}
