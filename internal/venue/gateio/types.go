package gateio

// Wire-level response envelopes for the Gate.io spot and futures REST APIs.
// Shapes are shared between both products wherever Gate.io itself reuses
// them (orders, accounts, tickers); futures-only fields are separated into
// their own structs in futures.go.

type wireCurrencyPair struct {
	ID              string `json:"id"`
	BaseDigits      int    `json:"precision"`
	QuotePrecision  int    `json:"amount_precision"`
	MinBaseAmount   string `json:"min_base_amount"`
	MinQuoteAmount  string `json:"min_quote_amount"`
	TradeStatus     string `json:"trade_status"`
	Fee             string `json:"fee"`
}

type wireOrderBook struct {
	Bids [][2]string `json:"bids"`
	Asks [][2]string `json:"asks"`
}

type wireTrade struct {
	ID         string `json:"id"`
	CreateTime string `json:"create_time"`
	Side       string `json:"side"`
	Amount     string `json:"amount"`
	Price      string `json:"price"`
}

type wireTicker struct {
	CurrencyPair string `json:"currency_pair"`
	HighestBid   string `json:"highest_bid"`
	LowestAsk    string `json:"lowest_ask"`
}

type wireCandle []string // [timestamp, volume, close, high, low, open, ...]

type wireAccount struct {
	Currency  string `json:"currency"`
	Available string `json:"available"`
	Locked    string `json:"locked"`
}

type wireOrder struct {
	ID           string `json:"id"`
	CurrencyPair string `json:"currency_pair"`
	Status       string `json:"status"`
	Type         string `json:"type"`
	Side         string `json:"side"`
	Amount       string `json:"amount"`
	Price        string `json:"price"`
	FilledTotal  string `json:"filled_total"`
	Left         string `json:"left"`
	TimeInForce  string `json:"time_in_force"`
	CreateTime   string `json:"create_time"`
	UpdateTime   string `json:"update_time"`
}

type wireCurrencyChain struct {
	Currency string `json:"currency"`
	Chains   []struct {
		Chain            string `json:"chain"`
		WithdrawDisabled bool   `json:"withdraw_disabled"`
		DepositDisabled  bool   `json:"deposit_disabled"`
	} `json:"chains"`
}

type wireWithdrawal struct {
	ID         string `json:"id"`
	TxID       string `json:"txid"`
	Currency   string `json:"currency"`
	Amount     string `json:"amount"`
	Status     string `json:"status"`
	Timestamp  string `json:"timestamp"`
}
