// DualPlex - Telegram Control Panel for Plex Media Servers
// Copyright 2026 SinCracK
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sincrack/dualplex

package glances

import (
	"github.com/goccy/go-json"
)

// normalize reduces the four successful query bodies to HostMetrics.
// Each field tries its known shapes in a fixed order and uses the first
// that matches; a field matching none is a KindShape failure.
func normalize(results map[string]queryResult) (*HostMetrics, error) {
	cpu, err := parseCPU(results["cpu"].body)
	if err != nil {
		return nil, err
	}
	mem, err := parseMem(results["mem"].body)
	if err != nil {
		return nil, err
	}
	publicIP, privateIP, err := parseIP(results["ip"].body)
	if err != nil {
		return nil, err
	}
	uptime, err := parseUptime(results["uptime"].body)
	if err != nil {
		return nil, err
	}

	return &HostMetrics{
		CPUPercent: cpu,
		MemPercent: mem,
		PublicIP:   publicIP,
		PrivateIP:  privateIP,
		Uptime:     uptime,
	}, nil
}

// cpuPayload is the /cpu object shape.
type cpuPayload struct {
	Total *float64 `json:"total"`
}

// parseCPU accepts {"total": x} or [{"total": x}].
func parseCPU(body []byte) (float64, error) {
	var obj cpuPayload
	if err := json.Unmarshal(body, &obj); err == nil && obj.Total != nil {
		return *obj.Total, nil
	}
	var list []cpuPayload
	if err := json.Unmarshal(body, &list); err == nil && len(list) > 0 && list[0].Total != nil {
		return *list[0].Total, nil
	}
	return 0, &Error{Kind: KindShape, Field: "cpu"}
}

// memPayload is the /mem object shape.
type memPayload struct {
	Used  *float64 `json:"used"`
	Total *float64 `json:"total"`
}

func (m memPayload) percent() (float64, bool) {
	if m.Used == nil || m.Total == nil || *m.Total == 0 {
		return 0, false
	}
	return *m.Used / *m.Total * 100, true
}

// parseMem accepts {"used": u, "total": t} or one-element list of that.
// Missing used or total in every shape is itself a failure, not a zero.
func parseMem(body []byte) (float64, error) {
	var obj memPayload
	if err := json.Unmarshal(body, &obj); err == nil {
		if pct, ok := obj.percent(); ok {
			return pct, nil
		}
	}
	var list []memPayload
	if err := json.Unmarshal(body, &list); err == nil && len(list) > 0 {
		if pct, ok := list[0].percent(); ok {
			return pct, nil
		}
	}
	return 0, &Error{Kind: KindShape, Field: "mem"}
}

// ipPayload is the /ip object shape.
type ipPayload struct {
	PublicAddress string `json:"public_address"`
	Address       string `json:"address"`
}

// parseIP accepts the bare object or the one-element list. Addresses the
// host does not expose render as "n/a" — address absence is a valid host
// configuration, unlike an unrecognized payload shape.
func parseIP(body []byte) (publicIP, privateIP string, err error) {
	var obj ipPayload
	if jsonErr := json.Unmarshal(body, &obj); jsonErr == nil && (obj.PublicAddress != "" || obj.Address != "") {
		return orNA(obj.PublicAddress), orNA(obj.Address), nil
	}
	var list []ipPayload
	if jsonErr := json.Unmarshal(body, &list); jsonErr == nil && len(list) > 0 {
		return orNA(list[0].PublicAddress), orNA(list[0].Address), nil
	}
	return "", "", &Error{Kind: KindShape, Field: "ip"}
}

func orNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}

// uptimePayload is the /uptime object shape.
type uptimePayload struct {
	Uptime string `json:"uptime"`
}

// parseUptime accepts, in order: a bare string, {"uptime": s}, a
// one-element list of either.
func parseUptime(body []byte) (string, error) {
	var s string
	if err := json.Unmarshal(body, &s); err == nil && s != "" {
		return s, nil
	}
	var obj uptimePayload
	if err := json.Unmarshal(body, &obj); err == nil && obj.Uptime != "" {
		return obj.Uptime, nil
	}
	var strList []string
	if err := json.Unmarshal(body, &strList); err == nil && len(strList) > 0 && strList[0] != "" {
		return strList[0], nil
	}
	var objList []uptimePayload
	if err := json.Unmarshal(body, &objList); err == nil && len(objList) > 0 && objList[0].Uptime != "" {
		return objList[0].Uptime, nil
	}
	return "", &Error{Kind: KindShape, Field: "uptime"}
}
