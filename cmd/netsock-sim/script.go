package main

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/wippyai/netsock/driver"
	"github.com/wippyai/netsock/socket"
)

const usage = `commands:
  listen tcp|udp PORT     bind a server socket
  connect PORT ADDR       inbound tcp connection from ADDR
  peer PORT ADDR          first udp datagram from ADDR
  accept HANDLE           accept a pending tcp connection
  remote HANDLE           take a pending udp peer
  announce HANDLE N       modem reports N unread bytes
  deliver HANDLE TEXT     push TEXT into the receive buffer
  read HANDLE N           drain up to N bytes
  close HANDLE            remote closed the socket
  advance DURATION        move simulated time (e.g. 5s)
  tick                    poll and recycle
  show                    print the socket table`

// execLine runs one script line against d. Blank lines and # comments do nothing.
func execLine(d *driver.Driver, line string) (string, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", nil
	}
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "listen":
		if err := need(cmd, args, 2); err != nil {
			return "", err
		}
		port, err := parsePort(args[1])
		if err != nil {
			return "", err
		}
		var h socket.Handle
		switch args[0] {
		case "tcp":
			h, err = d.ListenTCP(port)
		case "udp":
			h, err = d.ListenUDP(port)
		default:
			return "", fmt.Errorf("listen: unknown protocol %q", args[0])
		}
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s server %d on port %d", args[0], h, port), nil

	case "connect", "peer":
		if err := need(cmd, args, 2); err != nil {
			return "", err
		}
		port, err := parsePort(args[0])
		if err != nil {
			return "", err
		}
		addr, err := netip.ParseAddrPort(args[1])
		if err != nil {
			return "", fmt.Errorf("%s: %w", cmd, err)
		}
		var h socket.Handle
		if cmd == "connect" {
			h, err = d.ConnectTCP(port, addr)
		} else {
			h, err = d.PeerUDP(port, addr)
		}
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("socket %d queued on port %d from %s", h, port, addr), nil

	case "accept", "remote":
		if err := need(cmd, args, 1); err != nil {
			return "", err
		}
		h, err := parseHandle(args[0])
		if err != nil {
			return "", err
		}
		if cmd == "accept" {
			p, err := d.TCP().Accept(h)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("accepted socket %d from %s", p.Handle, p.Remote), nil
		}
		p, err := d.UDP().GetRemote(h)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("peer socket %d from %s", p.Handle, p.Remote), nil

	case "announce":
		if err := need(cmd, args, 2); err != nil {
			return "", err
		}
		h, err := parseHandle(args[0])
		if err != nil {
			return "", err
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return "", fmt.Errorf("announce: %w", err)
		}
		return "", d.Announce(h, n)

	case "deliver":
		if len(args) < 2 {
			return "", fmt.Errorf("deliver: want HANDLE TEXT")
		}
		h, err := parseHandle(args[0])
		if err != nil {
			return "", err
		}
		n, err := d.Deliver(h, []byte(strings.Join(args[1:], " ")))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("delivered %d bytes to %d", n, h), nil

	case "read":
		if err := need(cmd, args, 2); err != nil {
			return "", err
		}
		h, err := parseHandle(args[0])
		if err != nil {
			return "", err
		}
		size, err := strconv.Atoi(args[1])
		if err != nil || size < 0 {
			return "", fmt.Errorf("read: bad size %q", args[1])
		}
		buf := make([]byte, size)
		n, err := d.Read(h, buf)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("read %d bytes: %q", n, buf[:n]), nil

	case "close":
		if err := need(cmd, args, 1); err != nil {
			return "", err
		}
		h, err := parseHandle(args[0])
		if err != nil {
			return "", err
		}
		return "", d.RemoteClose(h)

	case "advance":
		if err := need(cmd, args, 1); err != nil {
			return "", err
		}
		dt, err := time.ParseDuration(args[0])
		if err != nil {
			return "", fmt.Errorf("advance: %w", err)
		}
		d.Advance(dt)
		return fmt.Sprintf("t=%s", d.Now().Format(time.TimeOnly)), nil

	case "tick":
		res := d.Tick()
		return fmt.Sprintf("polled %v, recycled %d", res.Polled, res.Recycled), nil

	case "show":
		return renderTable(d.Snapshot(), plainOutput), nil

	case "help":
		return usage, nil

	default:
		return "", fmt.Errorf("unknown command %q (try help)", cmd)
	}
}

func need(cmd string, args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("%s: want %d arguments, got %d", cmd, n, len(args))
	}
	return nil
}

func parsePort(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("bad port %q", s)
	}
	return uint16(v), nil
}

func parseHandle(s string) (socket.Handle, error) {
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("bad handle %q", s)
	}
	return socket.Handle(v), nil
}
