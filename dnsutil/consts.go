package dnsutil

const (
	TCPNetwork = "tcp" // Yeah, yea, a bit silly, but case is important
	UDPNetwork = "udp" // so having consts here avoids pernickety errors

	DefaultService = "domain" // Port appended to server addresses lacking one

	MaxUDPSize uint16 = 1232 // Generally suggested as universally safe in edns0
)
