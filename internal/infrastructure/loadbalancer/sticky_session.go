package loadbalancer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
)

// StickySessionManager pins a viewer canvas to one gateway instance.
// Layout state lives in process memory, so every request for a session
// must land on the instance that owns it. The affinity cookie is HMAC
// signed so clients cannot forge placement onto another instance.
type StickySessionManager struct {
	secretKey  []byte
	cookieName string
	maxAge     int
}

func NewStickySessionManager(secretKey string, cookieName string, maxAge int) *StickySessionManager {
	return &StickySessionManager{
		secretKey:  []byte(secretKey),
		cookieName: cookieName,
		maxAge:     maxAge,
	}
}

// GetSessionID returns the affinity id carried by a valid cookie, or
// derives a fresh one from the client fingerprint.
func (s *StickySessionManager) GetSessionID(r *http.Request) string {
	cookie, err := r.Cookie(s.cookieName)
	if err == nil && cookie.Value != "" && s.validateCookie(cookie.Value) {
		return s.extractSessionID(cookie.Value)
	}
	return s.fingerprint(r)
}

// SetSessionCookie writes the signed affinity cookie.
func (s *StickySessionManager) SetSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    s.signSessionID(sessionID),
		Path:     "/",
		MaxAge:   s.maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

// fingerprint derives a stable id from client IP and User-Agent so a
// cookie-less client still hashes to the same instance.
func (s *StickySessionManager) fingerprint(r *http.Request) string {
	data := fmt.Sprintf("%s:%s", s.clientIP(r), r.Header.Get("User-Agent"))
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:16])
}

func (s *StickySessionManager) signSessionID(sessionID string) string {
	mac := hmac.New(sha256.New, s.secretKey)
	mac.Write([]byte(sessionID))
	return fmt.Sprintf("%s.%s", sessionID, hex.EncodeToString(mac.Sum(nil)))
}

func (s *StickySessionManager) validateCookie(cookieValue string) bool {
	parts := strings.Split(cookieValue, ".")
	if len(parts) != 2 {
		return false
	}
	expected := s.signSessionID(parts[0])
	return hmac.Equal([]byte(cookieValue), []byte(expected))
}

func (s *StickySessionManager) extractSessionID(cookieValue string) string {
	parts := strings.Split(cookieValue, ".")
	if len(parts) != 2 {
		return ""
	}
	return parts[0]
}

func (s *StickySessionManager) clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		ips := strings.Split(forwarded, ",")
		return strings.TrimSpace(ips[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

// ConsistentHash maps a session key to a gateway instance.
type ConsistentHash struct {
	instances []string
}

func NewConsistentHash(instances []string) *ConsistentHash {
	return &ConsistentHash{instances: instances}
}

// GetInstance picks the instance for a key. Selection is stable for a
// fixed instance list.
func (ch *ConsistentHash) GetInstance(key string) string {
	if len(ch.instances) == 0 {
		return ""
	}

	hash := sha256.Sum256([]byte(key))
	hashValue := uint64(hash[0])<<56 | uint64(hash[1])<<48 | uint64(hash[2])<<40 | uint64(hash[3])<<32 |
		uint64(hash[4])<<24 | uint64(hash[5])<<16 | uint64(hash[6])<<8 | uint64(hash[7])

	return ch.instances[int(hashValue%uint64(len(ch.instances)))]
}
