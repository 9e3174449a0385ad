package mexc

// Wire-level response envelopes for the MEXC spot REST API. Field names
// mirror MEXC's own casing; conversion to the canonical model happens in
// mexc.go immediately after decode.

type symbolsInfoResponse struct {
	Symbols []wireSymbolInfo `json:"symbols"`
}

type wireSymbolInfo struct {
	Symbol              string `json:"symbol"`
	BaseAssetPrecision  int    `json:"baseAssetPrecision"`
	QuoteAssetPrecision int    `json:"quoteAssetPrecision"`
	Status              string `json:"status"`
	Filters             []struct {
		FilterType string `json:"filterType"`
		MinQty     string `json:"minQty"`
		TickSize   string `json:"tickSize"`
		StepSize   string `json:"stepSize"`
	} `json:"filters"`
	MakerCommission string `json:"makerCommission"`
	TakerCommission string `json:"takerCommission"`
}

type depthResponse struct {
	Bids [][2]string `json:"bids"`
	Asks [][2]string `json:"asks"`
}

type wireTrade struct {
	Price        string `json:"price"`
	Qty          string `json:"qty"`
	Time         int64  `json:"time"`
	IsBuyerMaker bool   `json:"isBuyerMaker"`
	ID           int64  `json:"id"`
}

type wireBookTicker struct {
	Symbol   string `json:"symbol"`
	BidPrice string `json:"bidPrice"`
	BidQty   string `json:"bidQty"`
	AskPrice string `json:"askPrice"`
	AskQty   string `json:"askQty"`
}

type serverTimeResponse struct {
	ServerTime int64 `json:"serverTime"`
}

type accountResponse struct {
	Balances []struct {
		Asset  string `json:"asset"`
		Free   string `json:"free"`
		Locked string `json:"locked"`
	} `json:"balances"`
}

type wireOrder struct {
	Symbol        string `json:"symbol"`
	OrderID       string `json:"orderId"`
	Price         string `json:"price"`
	OrigQty       string `json:"origQty"`
	ExecutedQty   string `json:"executedQty"`
	Status        string `json:"status"`
	Type          string `json:"type"`
	Side          string `json:"side"`
	TimeInForce   string `json:"timeInForce"`
	TransactTime  int64  `json:"transactTime"`
	Time          int64  `json:"time"`
	UpdateTime    int64  `json:"updateTime"`
}

type wireAssetInfo struct {
	Coin     string `json:"coin"`
	NetworkList []struct {
		Network         string `json:"network"`
		WithdrawEnable  bool   `json:"withdrawEnable"`
		DepositEnable   bool   `json:"depositEnable"`
		WithdrawFee     string `json:"withdrawFee"`
		WithdrawMin     string `json:"withdrawMin"`
	} `json:"networkList"`
}

type wireWithdrawal struct {
	ID        string `json:"id"`
	Coin      string `json:"coin"`
	Amount    string `json:"amount"`
	Status    int    `json:"status"`
	TxID      string `json:"txId"`
	ApplyTime int64  `json:"applyTime"`
}

type wireDeposit struct {
	Coin      string `json:"coin"`
	Amount    string `json:"amount"`
	Status    int    `json:"status"`
	TxID      string `json:"txId"`
	InsertTime int64 `json:"insertTime"`
}

type wireTradingFee struct {
	Symbol          string `json:"symbol"`
	MakerCommission string `json:"makerCommission"`
	TakerCommission string `json:"takerCommission"`
}

type listenKeyResponse struct {
	ListenKey string `json:"listenKey"`
}
