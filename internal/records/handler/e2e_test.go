package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"ansdns/internal/records/adapters/exm"
	"ansdns/internal/records/adapters/molecule"
	"ansdns/internal/records/auth"
	"ansdns/internal/records/metrics"
	"ansdns/internal/records/models"
	"ansdns/internal/records/ownership"
	"ansdns/internal/records/service"
	"ansdns/internal/records/store"
	"ansdns/pkg/testutil"
)

// newStack wires the real pipeline over httptest molecule and EXM servers.
func newStack(t *testing.T, owner *testutil.Signer, owned ...string) http.Handler {
	t.Helper()

	moleculeSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/"+owner.JWKN()) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"address": owner.Address()})
	}))
	t.Cleanup(moleculeSrv.Close)

	exmSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		domains := make([]map[string]string, 0, len(owned))
		for _, d := range owned {
			domains = append(domains, map[string]string{"domain": d})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"balances": []any{map[string]any{"address": owner.Address(), "ownedDomains": domains}},
		})
	}))
	t.Cleanup(exmSrv.Close)

	m := metrics.New(prometheus.NewRegistry())
	authn, err := auth.New(auth.NewPSSVerifier(), molecule.New(molecule.WithMetrics(m)))
	require.NoError(t, err)
	owners, err := ownership.New(exm.New(exm.WithBaseURL(exmSrv.URL), exm.WithMetrics(m)))
	require.NoError(t, err)
	contract, err := service.NewContract(authn, owners)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	exec, err := service.NewExecutor(contract, store.NewMemoryStore(), service.WithMetrics(m), service.WithLogger(logger))
	require.NoError(t, err)
	_, err = exec.Bootstrap(t.Context(), &models.ContractState{
		Signatures:         models.NewSignatureSet(),
		ANSContractAddress: "ans-contract",
		ARMolecule:         moleculeSrv.URL + "/ota",
		SigMessage:         "hello world",
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	New(exec, logger, nil).Register(r)
	return r
}

func TestRecordLifecycleOverHTTP(t *testing.T) {
	owner := testutil.NewSigner(t, 0)
	router := newStack(t, owner, "mydomain")

	setSig := owner.Sign(t, "hello world")
	set := map[string]any{
		"function": "setRecord",
		"domain":   "MyDomain",
		"jwk_n":    owner.JWKN(),
		"sig":      setSig,
		"TXT":      map[string]any{"type": "TXT", "name": "@", "value": []string{"v=spf1 -all"}},
	}

	testutil.Given(t, "a signed setRecord for an owned domain", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewActionRequest(t, set, "tx-set"))
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		testutil.Then(t, "the record is readable under the normalized domain", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequestWithBody(http.MethodGet, "/domains/mydomain/records", ""))
			require.Equal(t, http.StatusOK, rr.Code)
			require.JSONEq(t,
				`{"result":{"domain":"mydomain","records":[{"id":"tx-set","type":"TXT","name":"@","value":["v=spf1 -all"]}]}}`,
				rr.Body.String())
		})
	})

	testutil.When(t, "the same signature is replayed", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewActionRequest(t, set, "tx-replay"))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "ERROR_INVALID_CALLER_SIGNATURE")
	})

	testutil.When(t, "the caller targets a domain they do not own", func(t *testing.T) {
		foreign := map[string]any{
			"function": "setRecord",
			"domain":   "notmine",
			"jwk_n":    owner.JWKN(),
			"sig":      owner.Sign(t, "hello world"),
			"A":        map[string]any{"type": "A", "name": "@", "value": map[string]string{"ip": "1.1.1.1"}},
		}
		rr := testutil.DoRequest(router, testutil.NewActionRequest(t, foreign, ""))
		testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "ERROR_CALLER_NOT_DOMAIN_OWNER")
	})

	testutil.When(t, "the record is deleted by id", func(t *testing.T) {
		del := map[string]any{
			"function": "delRecord",
			"domain":   "mydomain",
			"jwk_n":    owner.JWKN(),
			"sig":      owner.Sign(t, "hello world"),
			"TXT":      map[string]string{"id": "tx-set", "type": "TXT"},
		}
		rr := testutil.DoRequest(router, testutil.NewActionRequest(t, del, ""))
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		rr = testutil.DoRequest(router, testutil.NewRequestWithBody(http.MethodGet, "/domains/mydomain/records", ""))
		require.JSONEq(t, `{"result":{"domain":"mydomain","records":[]}}`, rr.Body.String())
	})
}

func TestReusedTransactionHeaderCannotDuplicateRecords(t *testing.T) {
	owner := testutil.NewSigner(t, 0)
	router := newStack(t, owner, "mydomain")

	action := func() map[string]any {
		return map[string]any{
			"function": "setRecord",
			"domain":   "mydomain",
			"jwk_n":    owner.JWKN(),
			"sig":      owner.Sign(t, "hello world"),
			"A":        map[string]any{"type": "A", "name": "@", "value": map[string]string{"ip": "1.1.1.1"}},
		}
	}

	testutil.Given(t, "a record created under transaction id dup", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewActionRequest(t, action(), "dup"))
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	})

	testutil.When(t, "a second action reuses the transaction id", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewActionRequest(t, action(), "dup"))
		testutil.AssertStatusAndError(t, rr, http.StatusConflict, "ERROR_TRANSACTION_ID_ALREADY_USED")
	})

	testutil.Then(t, "the domain holds a single record with that identity", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequestWithBody(http.MethodGet, "/domains/mydomain/records", ""))
		require.JSONEq(t,
			`{"result":{"domain":"mydomain","records":[{"id":"dup","type":"A","name":"@","value":{"ip":"1.1.1.1"}}]}}`,
			rr.Body.String())
	})
}
