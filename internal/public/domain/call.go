package domain

// ContractCall is one invocation submitted through the hosted execution service.
type ContractCall struct {
	ContractAddress string   `json:"contractAddress"`
	Entrypoint      string   `json:"entrypoint"`
	Calldata        []string `json:"calldata"`
}
