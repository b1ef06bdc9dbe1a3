package core

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"cryptopage/config"
	"cryptopage/core/errors"
	"cryptopage/core/state"
	"cryptopage/core/types"
	"cryptopage/native/fees"
)

// Bootstrap initialises every component with params.Owner as owner, links the
// bank to the token and grants the module accounts the token roles they mint
// and burn with. The treasury defaults to the bank, in which case the initial
// supply goes to the owner and the bank balance starts empty.
func Bootstrap(ctx context.Context, l *Ledger, params config.Params) error {
	return l.Update(ctx, "bootstrap", func(tx *Tx) error {
		owner := params.Owner
		if types.IsZeroAddress(owner) {
			return errors.New(errors.KindNullAddress, "owner can't be null")
		}
		treasury := params.Treasury
		if types.IsZeroAddress(treasury) {
			treasury = tx.Bank.Address()
		}

		if err := tx.Token.Initialize(owner, treasury, tx.Bank.Address()); err != nil {
			return err
		}
		if err := tx.Bank.Initialize(owner); err != nil {
			return err
		}
		if err := tx.Bank.SetToken(owner, types.ModuleAddress(types.ModuleToken)); err != nil {
			return err
		}
		if err := tx.Content.Initialize(owner, treasury, params.BaseURI); err != nil {
			return err
		}
		if err := tx.Comments.Initialize(owner); err != nil {
			return err
		}

		modules := []common.Address{tx.Bank.Address(), tx.Content.Address(), tx.Comments.Address()}
		for _, module := range modules {
			for _, role := range []common.Hash{types.MinterRole, types.BurnerRole} {
				if err := tx.Token.Access().GrantRole(owner, role, module); err != nil {
					return err
				}
			}
		}

		if params.MintFeeBps != 0 && params.MintFeeBps != fees.DefaultMintFeeBps {
			if err := tx.Content.SetMintFee(owner, params.MintFeeBps); err != nil {
				return err
			}
		}
		if params.BurnFeeBps != 0 {
			if err := tx.Content.SetBurnFee(owner, params.BurnFeeBps); err != nil {
				return err
			}
		}
		if params.CommentFeeBps != 0 && params.CommentFeeBps != fees.DefaultCommentFeeBps {
			if err := tx.Content.SetCommentFee(owner, params.CommentFeeBps); err != nil {
				return err
			}
		}
		if params.CommentsDisabled {
			if _, err := tx.Comments.ToggleActive(owner); err != nil {
				return err
			}
		}

		if !types.IsZeroAddress(params.WETHUSDTPool) {
			if err := tx.Token.SetWETHUSDTPool(owner, params.WETHUSDTPool); err != nil {
				return err
			}
		}
		if !types.IsZeroAddress(params.USDTPAGEPool) {
			if err := tx.Token.SetUSDTPAGEPool(owner, params.USDTPAGEPool); err != nil {
				return err
			}
		}
		if params.StaticWETHUSDT != nil {
			if err := tx.Bank.SetStaticWETHUSDTPrice(owner, params.StaticWETHUSDT); err != nil {
				return err
			}
		}
		if params.StaticUSDTPAGE != nil {
			if err := tx.Bank.SetStaticUSDTPAGEPrice(owner, params.StaticUSDTPAGE); err != nil {
				return err
			}
		}
		return tx.state.SetStateVersion(state.StateVersion)
	})
}

// OptionsFromParams copies the engine tuning in params into opts.
func OptionsFromParams(opts Options, params config.Params) Options {
	opts.InitialSupply = params.InitialSupply
	opts.RewardPerHourDivisor = params.RewardPerHourDivisor
	opts.MintValue = params.MintValue
	opts.FlatMintReward = params.FlatMintReward
	opts.FlatCommentReward = params.FlatCommentReward
	return opts
}
