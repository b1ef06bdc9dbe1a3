package state

import (
	"github.com/ethereum/go-ethereum/common"

	"cryptopage/core/types"
)

func commentScope(ref common.Address, itemID uint64) []string {
	return []string{"comment", addrPart(ref), uintPart(itemID)}
}

func commentKey(ref common.Address, itemID uint64, parts ...string) []byte {
	return key(append(commentScope(ref, itemID), parts...)...)
}

func commentsDisabledKey() []byte { return key("comment", "disabled") }
func commentsTotalsKey() []byte   { return key("comment", "totals") }

// CommentCount returns the number of comments recorded for the item.
func (m *Manager) CommentCount(ref common.Address, itemID uint64) (uint64, error) {
	return m.getUint(commentKey(ref, itemID, "count"))
}

// CommentGet loads a single comment.
func (m *Manager) CommentGet(ref common.Address, itemID, id uint64) (*types.Comment, bool, error) {
	comment := new(types.Comment)
	ok, err := m.KVGet(commentKey(ref, itemID, "entry", uintPart(id)), comment)
	if err != nil || !ok {
		return nil, ok, err
	}
	return comment, true, nil
}

// CommentAppend stores comment under the next identifier of its item and
// indexes it by author. The assigned identifier is written back into comment.
func (m *Manager) CommentAppend(comment *types.Comment) error {
	ref, itemID := comment.ContentRef, comment.ItemID
	count, err := m.CommentCount(ref, itemID)
	if err != nil {
		return err
	}
	comment.ID = count
	if err := m.KVPut(commentKey(ref, itemID, "entry", uintPart(count)), comment); err != nil {
		return err
	}
	if err := m.KVPut(commentKey(ref, itemID, "count"), count+1); err != nil {
		return err
	}
	if err := m.CommentMarkLog(ref, itemID); err != nil {
		return err
	}
	return m.KVAppend(commentKey(ref, itemID, "author", addrPart(comment.Author)), encodeUint(count))
}

// CommentIDsOf lists the comment identifiers written by author on the item.
func (m *Manager) CommentIDsOf(ref common.Address, itemID uint64, author common.Address) ([]uint64, error) {
	return m.uintList(commentKey(ref, itemID, "author", addrPart(author)))
}

// CommentStatistic returns the tally for the item.
func (m *Manager) CommentStatistic(ref common.Address, itemID uint64) (types.Statistic, error) {
	var stat types.Statistic
	_, err := m.KVGet(commentKey(ref, itemID, "stat"), &stat)
	return stat, err
}

// CommentSetStatistic stores the tally for the item.
func (m *Manager) CommentSetStatistic(ref common.Address, itemID uint64, stat types.Statistic) error {
	return m.KVPut(commentKey(ref, itemID, "stat"), &stat)
}

// CommentTotals returns the tally across every item.
func (m *Manager) CommentTotals() (types.Statistic, error) {
	var stat types.Statistic
	_, err := m.KVGet(commentsTotalsKey(), &stat)
	return stat, err
}

// CommentSetTotals stores the global tally.
func (m *Manager) CommentSetTotals(stat types.Statistic) error {
	return m.KVPut(commentsTotalsKey(), &stat)
}

// CommentActivated reports whether the item accepts comments.
func (m *Manager) CommentActivated(ref common.Address, itemID uint64) (bool, error) {
	return m.getFlag(commentKey(ref, itemID, "activated"))
}

// CommentSetActivated toggles comment acceptance for the item. Activation
// also opens the item's comment log.
func (m *Manager) CommentSetActivated(ref common.Address, itemID uint64, active bool) error {
	if err := m.putFlag(commentKey(ref, itemID, "activated"), active); err != nil {
		return err
	}
	if active {
		return m.CommentMarkLog(ref, itemID)
	}
	return nil
}

// CommentHasLog reports whether a comment log was ever opened for the item.
func (m *Manager) CommentHasLog(ref common.Address, itemID uint64) (bool, error) {
	return m.getFlag(commentKey(ref, itemID, "log"))
}

// CommentMarkLog opens the comment log for the item.
func (m *Manager) CommentMarkLog(ref common.Address, itemID uint64) error {
	return m.putFlag(commentKey(ref, itemID, "log"), true)
}

// CommentsActive reports the global comment switch. Comments are active until
// explicitly switched off.
func (m *Manager) CommentsActive() (bool, error) {
	disabled, err := m.getFlag(commentsDisabledKey())
	return !disabled, err
}

// CommentsSetActive flips the global comment switch.
func (m *Manager) CommentsSetActive(active bool) error {
	return m.putFlag(commentsDisabledKey(), !active)
}
