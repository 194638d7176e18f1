package chain

var (
	NewClientAt = newClient
	NewFakeNode = newNode
)
