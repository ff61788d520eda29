// Package driver wires a socket Set and the TCP and UDP listeners into a
// simulated modem.
//
// It stands in for the device-facing code that reports arriving
// connections, received bytes and remote closes, and it runs the periodic
// tick that polls available data and recycles expired sockets. Time is
// simulated and moves only through Advance.
//
//	d, _ := driver.New(driver.DefaultOptions())
//	srv, _ := d.ListenTCP(80)
//	conn, _ := d.ConnectTCP(80, remote)
//	p, _ := d.TCP().Accept(srv) // p.Handle == conn
//	d.Deliver(conn, []byte("hello"))
package driver
