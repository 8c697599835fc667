package aggregator

import (
	"encoding/binary"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/davidch/flow/internal/flow"
)

const ethernetHeaderLen = 14

// etherTypeIPv4 is the EtherType value for IPv4 (spec.md §4.4).
const etherTypeIPv4 = 0x0800

// parsedPacket is what the Aggregator needs from one Ethernet frame.
type parsedPacket struct {
	key      flow.Key
	octets   uint32
	tcpFlags uint8
}

// parseIPv4Packet inspects frame (a full Ethernet frame, Ethernet header
// included) and extracts the flow identity and per-packet counters, per
// spec.md §4.4. ok is false if the frame is not IPv4, is too short, or
// carries a transport protocol other than TCP/UDP/ICMPv4 (dropped silently,
// per spec.md §4.4 step 4). VLAN tags are not unwrapped: the Ethernet
// header is always treated as exactly 14 octets (spec.md §4.4).
func parseIPv4Packet(frame []byte) (parsedPacket, bool) {
	if len(frame) < ethernetHeaderLen {
		return parsedPacket{}, false
	}
	etherType := binary.BigEndian.Uint16(frame[12:14])
	if etherType != etherTypeIPv4 {
		return parsedPacket{}, false
	}

	ipPayload := frame[ethernetHeaderLen:]
	octets := uint32(len(ipPayload))

	packet := gopacket.NewPacket(ipPayload, layers.LayerTypeIPv4, gopacket.Default)
	ipLayer := packet.Layer(layers.LayerTypeIPv4)
	if ipLayer == nil {
		return parsedPacket{}, false
	}
	ip, ok := ipLayer.(*layers.IPv4)
	if !ok {
		return parsedPacket{}, false
	}

	key := flow.Key{
		Protocol: uint8(ip.Protocol),
		ToS:      ip.TOS,
	}
	copy(key.SrcAddr[:], ip.SrcIP.To4())
	copy(key.DstAddr[:], ip.DstIP.To4())

	var tcpFlags uint8

	switch ip.Protocol {
	case layers.IPProtocolTCP:
		tcpLayer := packet.Layer(layers.LayerTypeTCP)
		if tcpLayer == nil {
			return parsedPacket{}, false
		}
		tcp := tcpLayer.(*layers.TCP)
		key.SrcPort = uint16(tcp.SrcPort)
		key.DstPort = uint16(tcp.DstPort)
		tcpFlags = encodeTCPFlags(tcp)
	case layers.IPProtocolUDP:
		udpLayer := packet.Layer(layers.LayerTypeUDP)
		if udpLayer == nil {
			return parsedPacket{}, false
		}
		udp := udpLayer.(*layers.UDP)
		key.SrcPort = uint16(udp.SrcPort)
		key.DstPort = uint16(udp.DstPort)
	case layers.IPProtocolICMPv4:
		icmpLayer := packet.Layer(layers.LayerTypeICMPv4)
		if icmpLayer == nil {
			return parsedPacket{}, false
		}
		icmp := icmpLayer.(*layers.ICMPv4)
		key.SrcPort = 0
		key.DstPort = uint16(icmp.TypeCode.Type())*256 + uint16(icmp.TypeCode.Code())
	default:
		return parsedPacket{}, false
	}

	return parsedPacket{key: key, octets: octets, tcpFlags: tcpFlags}, true
}

// encodeTCPFlags packs the standard 8-bit TCP flag field (spec.md §4.4
// "Extracts tcp_flags for TCP packets (unmodified byte from the header)").
func encodeTCPFlags(tcp *layers.TCP) uint8 {
	var flags uint8
	if tcp.FIN {
		flags |= 0x01
	}
	if tcp.SYN {
		flags |= 0x02
	}
	if tcp.RST {
		flags |= 0x04
	}
	if tcp.PSH {
		flags |= 0x08
	}
	if tcp.ACK {
		flags |= 0x10
	}
	if tcp.URG {
		flags |= 0x20
	}
	if tcp.ECE {
		flags |= 0x40
	}
	if tcp.CWR {
		flags |= 0x80
	}
	return flags
}
