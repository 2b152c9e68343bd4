package public

type addressInfo struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
	Funded  uint64 `json:"funded"`
	Spent   uint64 `json:"spent"`
	TxCount int    `json:"tx_count"`
}

type addressTx struct {
	TxID        string `json:"txid"`
	Fee         uint64 `json:"fee"`
	Confirmed   bool   `json:"confirmed"`
	BlockHeight int    `json:"block_height,omitempty"`
}

type txIn struct {
	PrevTxID  string `json:"prev_txid"`
	PrevIndex uint32 `json:"prev_index"`
	ScriptSig string `json:"script_sig"`
	Sequence  uint32 `json:"sequence"`
}

type txOut struct {
	Amount       uint64 `json:"amount"`
	ScriptPubKey string `json:"script_pubkey"`
	Script       string `json:"script"`
}

type transaction struct {
	TxID     string  `json:"txid"`
	Version  uint32  `json:"version"`
	Inputs   []txIn  `json:"inputs"`
	Outputs  []txOut `json:"outputs"`
	Locktime uint32  `json:"locktime"`
}

type blockInfo struct {
	ID           string   `json:"id"`
	Version      uint32   `json:"version"`
	PrevBlock    string   `json:"prev_block"`
	MerkleRoot   string   `json:"merkle_root"`
	MerkleValid  bool     `json:"merkle_valid"`
	Timestamp    uint32   `json:"timestamp"`
	Bits         uint32   `json:"bits"`
	Difficulty   string   `json:"difficulty"`
	ValidPoW     bool     `json:"valid_pow"`
	Transactions []string `json:"transactions"`
}

type submitTx struct {
	Tx string `json:"tx" validate:"required,hexadecimal"`
}

type submitResult struct {
	TxID   string `json:"txid"`
	Status string `json:"status"`
}
