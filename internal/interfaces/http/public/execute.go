package public

import (
	"context"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/fernetbarato/fernet-barato/api/internal/codec"
	"github.com/fernetbarato/fernet-barato/api/internal/interfaces/http/common"
	publicapp "github.com/fernetbarato/fernet-barato/api/internal/public/application"
)

// executeCommandFrom keeps the request's shape information so validation can
// tell a missing calls field from one that is not an array.
func executeCommandFrom(body gjson.Result) publicapp.ExecuteCommand {
	calls := body.Get("calls")
	cmd := publicapp.ExecuteCommand{
		WalletAddress: body.Get("walletAddress").String(),
		AccessToken:   body.Get("accessToken").String(),
		Network:       body.Get("network").String(),
		CallsPresent:  truthy(calls),
		CallsIsArray:  calls.IsArray(),
	}
	if !cmd.CallsIsArray {
		return cmd
	}

	for _, call := range calls.Array() {
		calldata := call.Get("calldata")
		input := publicapp.CallInput{
			ContractAddress: stringIfTruthy(call.Get("contractAddress")),
			Entrypoint:      stringIfTruthy(call.Get("entrypoint")),
			HasCalldata:     truthy(calldata),
		}
		if calldata.IsArray() {
			for _, item := range calldata.Array() {
				input.Calldata = append(input.Calldata, codec.FromJSON(item))
			}
		} else if input.HasCalldata {
			input.Calldata = []codec.Value{codec.FromJSON(calldata)}
		}
		cmd.Calls = append(cmd.Calls, input)
	}
	return cmd
}

func stringIfTruthy(r gjson.Result) string {
	if !truthy(r) {
		return ""
	}
	return r.String()
}

func (h *Handler) executeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), common.WriteTimeout)
		defer cancel()

		body, err := common.ReadJSON(w, r)
		if err != nil {
			h.writeServiceError(w, err, http.StatusInternalServerError, "Transaction failed")
			return
		}

		receipt, err := h.accounts.Execute(ctx, executeCommandFrom(body))
		if err != nil {
			h.writeServiceError(w, err, http.StatusInternalServerError, "Transaction failed")
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, txResponse("Transaction executed successfully", receipt))
	}
}
