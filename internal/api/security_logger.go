package api

import (
	"log"
	"os"
	"time"
)

// SecurityLogger handles security-conscious logging with no raw seed exposure
type SecurityLogger struct {
	logger *log.Logger
}

// NewSecurityLogger creates a new security logger
func NewSecurityLogger() *SecurityLogger {
	return &SecurityLogger{
		logger: log.New(os.Stdout, "[SECURITY] ", log.LstdFlags|log.LUTC),
	}
}

// LogRollOperation logs live roll operations
func (sl *SecurityLogger) LogRollOperation(requestID, notation, kind string, seeded bool, result int64) {
	sl.logger.Printf(
		"roll_operation request_id=%s notation=%s kind=%s seeded=%t result=%d engine_version=%s timestamp=%s",
		requestID, notation, kind, seeded, result,
		EngineVersion, time.Now().UTC().Format(time.RFC3339),
	)
}

// LogVerifyOperation logs verify operations with security-safe parameters
func (sl *SecurityLogger) LogVerifyOperation(requestID, notation, serverSeed, clientSeed string, nonce uint64) {
	sl.logger.Printf(
		"verify_operation request_id=%s notation=%s server_hash=%s client_hash=%s nonce=%d engine_version=%s timestamp=%s",
		requestID, notation, hashSeed(serverSeed), hashSeed(clientSeed), nonce,
		EngineVersion, time.Now().UTC().Format(time.RFC3339),
	)
}

// LogScanOperation logs scan operations with security-safe parameters
func (sl *SecurityLogger) LogScanOperation(
	requestID string,
	notation string,
	serverSeed string,
	clientSeed string,
	nonceStart, nonceEnd uint64,
	targetOp string,
	targetVal int64,
	limit int,
	timeoutMs int,
) {
	sl.logger.Printf(
		"scan_operation request_id=%s notation=%s server_hash=%s client_hash=%s nonce_range=%d-%d target_op=%s target_val=%d limit=%d timeout_ms=%d engine_version=%s timestamp=%s",
		requestID, notation, hashSeed(serverSeed), hashSeed(clientSeed),
		nonceStart, nonceEnd, targetOp, targetVal, limit, timeoutMs,
		EngineVersion, time.Now().UTC().Format(time.RFC3339),
	)
}

// LogSeedHashOperation logs seed hashing operations (only hashes, never the raw seed)
func (sl *SecurityLogger) LogSeedHashOperation(requestID, serverSeed, resultHash string) {
	sl.logger.Printf(
		"seed_hash_operation request_id=%s input_hash=%s result_hash=%s engine_version=%s timestamp=%s",
		requestID, hashSeed(serverSeed), resultHash,
		EngineVersion, time.Now().UTC().Format(time.RFC3339),
	)
}

// LogSecurityEvent logs security-related events such as failed validations
func (sl *SecurityLogger) LogSecurityEvent(
	requestID string,
	eventType string,
	description string,
	context map[string]interface{},
	remoteAddr string,
) {
	sl.logger.Printf(
		"security_event request_id=%s type=%s description=%q context=%+v remote_addr=%s engine_version=%s timestamp=%s",
		requestID, eventType, description, sl.sanitizeContext(context), remoteAddr,
		EngineVersion, time.Now().UTC().Format(time.RFC3339),
	)
}

// sanitizeContext removes sensitive data from context maps
func (sl *SecurityLogger) sanitizeContext(context map[string]interface{}) map[string]interface{} {
	if context == nil {
		return nil
	}

	sanitized := make(map[string]interface{})
	for key, value := range context {
		switch key {
		case "server_seed", "serverSeed", "server", "client_seed", "clientSeed", "client":
			// Hash seeds instead of logging them
			if strVal, ok := value.(string); ok {
				sanitized[key+"_hash"] = hashSeed(strVal)
			} else {
				sanitized[key+"_hash"] = "non_string_value"
			}
		case "private_key", "secret", "password", "token", "api_key", "authorization":
			// Never log these
			sanitized[key] = "[REDACTED]"
		default:
			sanitized[key] = value
		}
	}

	return sanitized
}
