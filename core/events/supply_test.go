package events

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestTokenSupplyEvent(t *testing.T) {
	evt := TokenSupply{
		Token:  "page",
		Total:  big.NewInt(5000),
		Delta:  big.NewInt(250),
		Reason: SupplyReasonMint,
	}.Event()
	if evt == nil {
		t.Fatalf("expected event")
	}
	if evt.Type != TypeTokenSupply {
		t.Fatalf("unexpected type: %s", evt.Type)
	}
	if evt.Attributes["token"] != "PAGE" {
		t.Fatalf("unexpected token attr: %s", evt.Attributes["token"])
	}
	if evt.Attributes["total"] != "5000" || evt.Attributes["delta"] != "250" {
		t.Fatalf("unexpected attrs: %+v", evt.Attributes)
	}
	if evt.Attributes["reason"] != SupplyReasonMint {
		t.Fatalf("unexpected reason: %s", evt.Attributes["reason"])
	}
}

func TestTransferEventRendersHexAddresses(t *testing.T) {
	to := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	evt := Transfer{Token: "page", To: to, Amount: big.NewInt(7)}.Event()
	if evt.Attributes["from"] != (common.Address{}).Hex() {
		t.Fatalf("mint transfer must originate from the null account: %s", evt.Attributes["from"])
	}
	if evt.Attributes["to"] != to.Hex() || evt.Attributes["amount"] != "7" {
		t.Fatalf("unexpected attrs: %+v", evt.Attributes)
	}
}

func TestBufferFlushesOnlyOnRequest(t *testing.T) {
	var buf Buffer
	rec := &Recorder{}
	buf.Emit(TokenSupply{Token: "PAGE", Total: big.NewInt(1)})
	buf.Emit(Transfer{Token: "PAGE", Amount: big.NewInt(1)})
	if len(rec.Events()) != 0 {
		t.Fatalf("buffered events leaked before flush")
	}
	flushed := buf.Flush(rec)
	if len(flushed) != 2 || buf.Len() != 0 {
		t.Fatalf("unexpected flush result: %d flushed, %d pending", len(flushed), buf.Len())
	}
	if got := rec.OfType(TypeTransfer); len(got) != 1 {
		t.Fatalf("expected one transfer event, got %d", len(got))
	}
}
