package types

import (
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Module names double as role scopes and as seeds for module account
// addresses.
const (
	ModuleToken    = "token"
	ModuleBank     = "bank"
	ModuleContent  = "nft"
	ModuleComments = "comment"
)

var modulePrefix = []byte("cryptopage/module/")

// ModuleAddress derives the account that represents a native module when it
// acts as a caller (for example when the content registry mints rewards).
func ModuleAddress(module string) common.Address {
	seed := make([]byte, 0, len(modulePrefix)+len(module))
	seed = append(seed, modulePrefix...)
	seed = append(seed, module...)
	return common.BytesToAddress(ethcrypto.Keccak256(seed)[12:])
}

// Role identifiers use the keccak256 of their name, matching the access
// control convention of the deployed contracts. The default admin role is the
// zero hash.
var (
	DefaultAdminRole = common.Hash{}
	MinterRole       = ethcrypto.Keccak256Hash([]byte("MINTER_ROLE"))
	BurnerRole       = ethcrypto.Keccak256Hash([]byte("BURNER_ROLE"))
)

// RoleName renders a well-known role identifier for logs and error reasons.
func RoleName(role common.Hash) string {
	switch role {
	case DefaultAdminRole:
		return "DEFAULT_ADMIN_ROLE"
	case MinterRole:
		return "MINTER_ROLE"
	case BurnerRole:
		return "BURNER_ROLE"
	default:
		return role.Hex()
	}
}

// IsZeroAddress reports whether addr is the null account.
func IsZeroAddress(addr common.Address) bool {
	return addr == (common.Address{})
}
