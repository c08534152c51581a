package udev

import (
	"strconv"
	"strings"
)

// parseUevent decodes a NETLINK_KOBJECT_UEVENT datagram. The kernel's wire
// format is a header line "ACTION@DEVPATH" followed by NUL-separated
// "KEY=VALUE" pairs (SUBSYSTEM, MAJOR, MINOR, DEVNAME, ...). libudev
// additionally prefixes "libudev"-tagged messages with a binary header;
// this monitor only understands the plain kernel format, which is the one
// the kernel always emits regardless of whether udevd is running.
func parseUevent(raw []byte) (Event, bool) {
	parts := strings.Split(string(raw), "\x00")
	if len(parts) == 0 {
		return Event{}, false
	}

	header := parts[0]
	at := strings.IndexByte(header, '@')
	if at < 0 {
		return Event{}, false
	}
	ev := Event{Action: header[:at], DevPath: header[at+1:]}

	for _, kv := range parts[1:] {
		eq := strings.IndexByte(kv, '=')
		if eq < 0 {
			continue
		}
		key, val := kv[:eq], kv[eq+1:]
		switch key {
		case "SUBSYSTEM":
			ev.Subsystem = val
		case "DEVNAME":
			ev.DevName = val
		case "MAJOR":
			if n, err := strconv.ParseUint(val, 10, 32); err == nil {
				ev.Major = uint32(n)
			}
		case "MINOR":
			if n, err := strconv.ParseUint(val, 10, 32); err == nil {
				ev.Minor = uint32(n)
			}
		}
	}

	if ev.Action == "" || ev.Subsystem == "" {
		return Event{}, false
	}
	return ev, true
}
