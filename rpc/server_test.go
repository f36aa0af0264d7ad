package rpc

import (
	"bytes"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/frntpump/fnt-contracts/core"
	"github.com/frntpump/fnt-contracts/storage"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	node := core.NewNode(storage.NewMemDB())
	return NewServer(node, nil).Router()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), into); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func tokenString(n int64) string {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	return new(big.Int).Mul(big.NewInt(n), scale).String()
}

func TestRegisterAndFetchParticipant(t *testing.T) {
	h := newTestRouter(t)
	root := common.HexToAddress("0x1000000000000000000000000000000000000001")
	referee := common.HexToAddress("0x1000000000000000000000000000000000000002")

	rec := doJSON(t, h, http.MethodPost, "/v1/members/register-sponsored", addressRequest{Address: root.Hex()})
	if rec.Code != http.StatusCreated {
		t.Fatalf("sponsored register status = %d body %s", rec.Code, rec.Body.String())
	}
	var rootView participantView
	decodeBody(t, rec, &rootView)
	if rootView.Seq != 1 || !rootView.Sponsored {
		t.Fatalf("unexpected root view: %+v", rootView)
	}

	rec = doJSON(t, h, http.MethodPost, "/v1/members/register", registerRequest{Caller: referee.Hex(), ReferrerSeq: 1})
	if rec.Code != http.StatusCreated {
		t.Fatalf("referral register status = %d body %s", rec.Code, rec.Body.String())
	}
	var refView participantView
	decodeBody(t, rec, &refView)
	if refView.Referrer != root.Hex() {
		t.Fatalf("referrer = %q, want %q", refView.Referrer, root.Hex())
	}

	rec = doJSON(t, h, http.MethodGet, "/v1/members/"+referee.Hex(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("fetch status = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/v1/members/0x2000000000000000000000000000000000000099", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown member status = %d, want 404", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/v1/counters", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("counters status = %d", rec.Code)
	}
	var counters countersView
	decodeBody(t, rec, &counters)
	if counters.Participants != 2 || counters.Referrals != 1 {
		t.Fatalf("counters = %+v", counters)
	}
}

func TestDuplicateRegistrationConflicts(t *testing.T) {
	h := newTestRouter(t)
	addr := common.HexToAddress("0x1000000000000000000000000000000000000003")

	if rec := doJSON(t, h, http.MethodPost, "/v1/members/register-sponsored", addressRequest{Address: addr.Hex()}); rec.Code != http.StatusCreated {
		t.Fatalf("first register status = %d", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodPost, "/v1/members/register-sponsored", addressRequest{Address: addr.Hex()}); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register status = %d, want 409", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodPost, "/v1/members/register", registerRequest{Caller: "0x9", ReferrerSeq: 1}); rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid address status = %d, want 400", rec.Code)
	}
}

func TestPurchaseEndpoints(t *testing.T) {
	h := newTestRouter(t)
	buyer := common.HexToAddress("0x1000000000000000000000000000000000000010")

	// A purchase at the whale threshold (70% of the 20k cap) carries the
	// 30% tax.
	rec := doJSON(t, h, http.MethodPost, "/v1/purchase", purchaseRequest{Buyer: buyer.Hex(), Payment: tokenString(14_000)})
	if rec.Code != http.StatusOK {
		t.Fatalf("purchase status = %d body %s", rec.Code, rec.Body.String())
	}
	var quote quoteView
	decodeBody(t, rec, &quote)
	if quote.TokenAmount != tokenString(14_000) || quote.WhaleTax != tokenString(4_200) {
		t.Fatalf("quote = %+v", quote)
	}

	rec = doJSON(t, h, http.MethodPost, "/v1/purchase/preview", purchaseRequest{Buyer: buyer.Hex(), Payment: tokenString(7_000)})
	if rec.Code != http.StatusOK {
		t.Fatalf("preview status = %d", rec.Code)
	}
	decodeBody(t, rec, &quote)
	if quote.CanPurchase || quote.Reason != "exceeds_limit" {
		t.Fatalf("over-cap preview = %+v", quote)
	}

	rec = doJSON(t, h, http.MethodPost, "/v1/purchase", purchaseRequest{Buyer: buyer.Hex(), Payment: tokenString(7_000)})
	if rec.Code != http.StatusConflict {
		t.Fatalf("over-cap purchase status = %d, want 409", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/v1/purchase/redeem-tax", callerRequest{Caller: buyer.Hex()})
	if rec.Code != http.StatusConflict {
		t.Fatalf("redeem without referrals status = %d, want 409", rec.Code)
	}
}

func TestStakeLifecycleOverHTTP(t *testing.T) {
	h := newTestRouter(t)
	owner := common.HexToAddress("0x1000000000000000000000000000000000000020")

	// Mint a balance through a purchase before staking.
	if rec := doJSON(t, h, http.MethodPost, "/v1/purchase", purchaseRequest{Buyer: owner.Hex(), Payment: tokenString(1_000)}); rec.Code != http.StatusOK {
		t.Fatalf("funding purchase status = %d body %s", rec.Code, rec.Body.String())
	}

	rec := doJSON(t, h, http.MethodPost, "/v1/stakes", createStakeRequest{Owner: owner.Hex(), LockTier: 0, Amount: tokenString(500)})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create stake status = %d body %s", rec.Code, rec.Body.String())
	}
	var position positionView
	decodeBody(t, rec, &position)
	if position.ID != 1 || position.Owner != owner.Hex() || position.Principal != tokenString(500) {
		t.Fatalf("position = %+v", position)
	}

	if rec := doJSON(t, h, http.MethodGet, "/v1/stakes/1", nil); rec.Code != http.StatusOK {
		t.Fatalf("fetch stake status = %d", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodPost, "/v1/stakes/1/settle", nil); rec.Code != http.StatusOK {
		t.Fatalf("settle status = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/v1/members/"+owner.Hex()+"/stakes", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list stakes status = %d", rec.Code)
	}
	var views []positionView
	decodeBody(t, rec, &views)
	if len(views) != 1 {
		t.Fatalf("stake count = %d, want 1", len(views))
	}

	// Exiting before unlock requires force.
	if rec := doJSON(t, h, http.MethodPost, "/v1/stakes/1/exit", exitStakeRequest{Owner: owner.Hex()}); rec.Code != http.StatusConflict {
		t.Fatalf("locked exit status = %d, want 409", rec.Code)
	}
	rec = doJSON(t, h, http.MethodPost, "/v1/stakes/1/exit", exitStakeRequest{Owner: owner.Hex(), Force: true})
	if rec.Code != http.StatusOK {
		t.Fatalf("forced exit status = %d body %s", rec.Code, rec.Body.String())
	}

	if rec := doJSON(t, h, http.MethodGet, "/v1/stakes/1", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("exited stake status = %d, want 404", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodGet, "/v1/staking/metrics", nil); rec.Code != http.StatusOK {
		t.Fatalf("staking metrics status = %d", rec.Code)
	}
}

func TestRequestValidation(t *testing.T) {
	h := newTestRouter(t)

	if rec := doJSON(t, h, http.MethodPost, "/v1/purchase", purchaseRequest{Buyer: "not-an-address", Payment: "10"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad address status = %d, want 400", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodPost, "/v1/purchase", purchaseRequest{Buyer: "0x1000000000000000000000000000000000000001", Payment: "-5"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("negative amount status = %d, want 400", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodPost, "/v1/members/register", map[string]interface{}{"caller": "0x1000000000000000000000000000000000000001", "bogus": 1}); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown field status = %d, want 400", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodGet, "/v1/stakes/abc", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad stake id status = %d, want 400", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodGet, "/v1/stakes/42", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("missing stake status = %d, want 404", rec.Code)
	}
}

func TestModulePauseSurfacesAsUnavailable(t *testing.T) {
	h := newTestRouter(t)
	buyer := common.HexToAddress("0x1000000000000000000000000000000000000030")

	if rec := doJSON(t, h, http.MethodPost, "/v1/admin/pause", pauseRequest{Module: "purchase", Paused: true}); rec.Code != http.StatusOK {
		t.Fatalf("pause status = %d body %s", rec.Code, rec.Body.String())
	}
	if rec := doJSON(t, h, http.MethodPost, "/v1/purchase", purchaseRequest{Buyer: buyer.Hex(), Payment: tokenString(10)}); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("paused purchase status = %d, want 503", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodPost, "/v1/admin/pause", pauseRequest{Module: "purchase", Paused: false}); rec.Code != http.StatusOK {
		t.Fatalf("unpause status = %d", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodPost, "/v1/purchase", purchaseRequest{Buyer: buyer.Hex(), Payment: tokenString(10)}); rec.Code != http.StatusOK {
		t.Fatalf("resumed purchase status = %d", rec.Code)
	}
}

func TestResyncTierEndpoint(t *testing.T) {
	h := newTestRouter(t)
	addr := common.HexToAddress("0x1000000000000000000000000000000000000040")

	if rec := doJSON(t, h, http.MethodPost, "/v1/members/register-sponsored", addressRequest{Address: addr.Hex()}); rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d", rec.Code)
	}
	rec := doJSON(t, h, http.MethodPost, "/v1/members/resync-tier", addressRequest{Address: addr.Hex()})
	if rec.Code != http.StatusOK {
		t.Fatalf("resync status = %d body %s", rec.Code, rec.Body.String())
	}
	var resp map[string]uint8
	decodeBody(t, rec, &resp)
	if resp["tier"] != 1 {
		t.Fatalf("tier = %d, want 1", resp["tier"])
	}

	if rec := doJSON(t, h, http.MethodPost, "/v1/members/resync-tier", addressRequest{Address: "0x1000000000000000000000000000000000000099"}); rec.Code != http.StatusNotFound {
		t.Fatalf("unregistered resync status = %d, want 404", rec.Code)
	}
}

func TestAdminPurchaseConfigOverlay(t *testing.T) {
	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/v1/admin/config/purchase", map[string]interface{}{"whaleTaxBps": 2500})
	if rec.Code != http.StatusOK {
		t.Fatalf("overlay status = %d body %s", rec.Code, rec.Body.String())
	}
	var view purchaseConfigView
	decodeBody(t, rec, &view)
	if view.WhaleTaxBps != 2500 {
		t.Fatalf("whale tax = %d, want 2500", view.WhaleTaxBps)
	}
	// Untouched fields keep their previous values.
	if !view.Active || view.Cap != tokenString(20_000) {
		t.Fatalf("unrelated fields changed: %+v", view)
	}

	// An out-of-range overlay is rejected without touching state.
	if rec := doJSON(t, h, http.MethodPost, "/v1/admin/config/purchase", map[string]interface{}{"whaleTaxBps": 25_000}); rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid overlay status = %d, want 400", rec.Code)
	}
	rec = doJSON(t, h, http.MethodPost, "/v1/admin/config/purchase", map[string]interface{}{})
	decodeBody(t, rec, &view)
	if view.WhaleTaxBps != 2500 {
		t.Fatalf("failed overlay mutated config: %d", view.WhaleTaxBps)
	}
}

func TestAdminRewardAndClaimConfigOverlays(t *testing.T) {
	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/v1/admin/config/rewards", map[string]interface{}{
		"milestone": map[string]interface{}{"bonus": tokenString(7), "interval": 5, "maxMilestones": 10, "growthBps": 2500},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("reward overlay status = %d body %s", rec.Code, rec.Body.String())
	}
	var rview rewardConfigView
	decodeBody(t, rec, &rview)
	if rview.Milestone.Interval != 5 || rview.Milestone.Bonus != tokenString(7) {
		t.Fatalf("milestone = %+v", rview.Milestone)
	}
	if len(rview.Steps) == 0 {
		t.Fatal("step table lost by a milestone-only overlay")
	}

	rec = doJSON(t, h, http.MethodPost, "/v1/admin/config/claims", map[string]interface{}{"freeClaim": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("claim overlay status = %d body %s", rec.Code, rec.Body.String())
	}
	var cview claimConfigView
	decodeBody(t, rec, &cview)
	if !cview.FreeClaim || !cview.TokenBonusActive {
		t.Fatalf("claim config = %+v", cview)
	}
}

func TestAdminStakingConfigOverlay(t *testing.T) {
	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/v1/admin/config/staking", map[string]interface{}{"autoCompoundBonusBps": 400})
	if rec.Code != http.StatusOK {
		t.Fatalf("staking overlay status = %d body %s", rec.Code, rec.Body.String())
	}
	var view stakingConfigView
	decodeBody(t, rec, &view)
	if view.AutoCompoundBonusBps != 400 || len(view.Lock) != 6 {
		t.Fatalf("staking config = %+v", view)
	}

	if rec := doJSON(t, h, http.MethodPost, "/v1/admin/config/staking", map[string]interface{}{"autoCompoundBonusBps": 6_000}); rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid staking overlay status = %d, want 400", rec.Code)
	}
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	h := newTestRouter(t)
	if rec := doJSON(t, h, http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodGet, "/metrics", nil); rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
}
