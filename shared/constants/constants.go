package constants

const VERSION = "1.0.0"

const CLIUserAgent = "pdfvault-cli"

const IVSize int = 16
const KeySize int = 32
const FileIDSize int = 16 // 128-bit ids, hex encoded
const RandomPasswordSize int = 16

const TOTPSecretSize uint = 20 // 160-bit secret, 32 base32 chars
const TOTPPeriod uint = 30
const TOTPSkew uint = 1
const TOTPCodeLen = 6
const DefaultTOTPIssuer = "PDF Vault"

const DefaultMaxUploadSize int64 = 25 * 1024 * 1024 // 25 MB
const DefaultFileName = "file"
const FallbackContentType = "application/octet-stream"
