package capability

// Wire types for the chain gateway API. Amounts travel as decimal strings
// since fee figures overflow float64 long before they overflow a balance.

type weightBody struct {
	RefTime   uint64 `json:"refTime"`
	ProofSize uint64 `json:"proofSize"`
}

type dryRunCallRequest struct {
	Call          []byte `json:"call"`
	UseRootOrigin bool   `json:"useRootOrigin"`
}

type originBody struct {
	Parents  int     `json:"parents"`
	ParaID   *uint32 `json:"paraId,omitempty"`
	Interior string  `json:"interior,omitempty"`
}

type dryRunXcmRequest struct {
	Origin  originBody `json:"origin"`
	Message []byte     `json:"message"`
}

type dryRunResponse struct {
	Success      bool        `json:"success"`
	Fee          string      `json:"fee,omitempty"`
	Reason       string      `json:"reason,omitempty"`
	SubReason    string      `json:"subReason,omitempty"`
	Weight       *weightBody `json:"weight,omitempty"`
	ForwardedXcm []byte      `json:"forwardedXcm,omitempty"`
	DestParaID   *uint32     `json:"destParaId,omitempty"`
}

type paymentInfoRequest struct {
	Call   []byte `json:"call"`
	Sender string `json:"sender"`
}

type paymentInfoResponse struct {
	PartialFee string `json:"partialFee"`
}

type balanceResponse struct {
	Free string `json:"free"`
}

type bridgeExportFeesResponse struct {
	Fees []string `json:"fees"`
}

type poolQuoteResponse struct {
	AmountOut string `json:"amountOut"`
}

type buildTransferRequest struct {
	To             string `json:"to"`
	Sender         string `json:"sender"`
	Recipient      string `json:"recipient"`
	Currency       string `json:"currency"`
	Amount         string `json:"amount,omitempty"`
	RelativeAmount string `json:"relativeAmount,omitempty"`
}

type buildTransferResponse struct {
	Call []byte `json:"call"`
}

// errorResponse is the gateway's error envelope. Code carries machine
// readable failure classes, amount-too-low being the one the engine
// branches on.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const codeAmountTooLow = "AmountTooLow"
