package tiktok

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Sign computes the request signature the open API requires on every
// authenticated call: HMAC-SHA256, keyed by the app secret, over the string
//
//	appSecret + path + key1 + value1 + ... + keyN + valueN + appSecret
//
// with parameter keys sorted bytewise ascending. The sign and access_token
// parameters never participate in the signed payload. Values must be the
// exact strings that will be sent on the wire.
func Sign(appSecret, path string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "sign" || k == "access_token" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(appSecret)
	b.WriteString(path)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(params[k])
	}
	b.WriteString(appSecret)

	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write([]byte(b.String()))
	return hex.EncodeToString(mac.Sum(nil))
}
