/*
The converter service turns PDF documents into page images and uploads
them to caller-controlled object storage.

The converter is responsible for:
  - Authenticating callers with bearer tokens (HMAC or RSA signed)
  - Downloading source PDFs from pre-signed URLs or bucket/key addresses
  - Rasterizing every page to PNG with a bounded worker pool
  - Uploading rendered pages to the caller's destination
  - Notifying an optional webhook when the conversion settles

# Architecture

The service follows the shared handler/worker layout:

	├── cmd/converter/        # Application entry point
	├── config/               # Environment configuration
	├── handler/              # Platform-agnostic request handling
	│   └── platforms/        # HTTP and Lambda adapters
	├── internal/
	│   ├── auth/             # Token verification middleware
	│   ├── domain/           # Error model shared by all stages
	│   ├── request/          # Payload parsing and validation
	│   ├── fetch/            # Source document download
	│   ├── render/           # PDF rasterization (MuPDF)
	│   ├── publish/          # Page image upload
	│   ├── notify/           # Webhook delivery
	│   ├── secrets/          # Signing secret sources
	│   └── worker/           # Pipeline orchestration
	├── observability/        # Logging and metrics
	└── storage/              # Object storage clients

# Usage

The service exposes a single conversion endpoint:

	POST /convert
	Authorization: Bearer <token>
	Content-Type: application/json

	{
	    "unique_id": "job-4711",
	    "source": "https://bucket.s3.amazonaws.com/in/report.pdf?X-Amz-...",
	    "destination": "https://bucket.s3.amazonaws.com/out/report?X-Amz-...",
	    "webhook": "https://example.com/conversions"
	}

Callers without pre-signed URLs address objects directly and supply
temporary credentials:

	{
	    "unique_id": "job-4711",
	    "source": {"bucket": "docs", "key": "in/report.pdf"},
	    "destination": {"bucket": "results", "prefix": "out/job-4711/"},
	    "credentials": {
	        "accessKeyId": "...",
	        "secretAccessKey": "...",
	        "sessionToken": "..."
	    }
	}

The response lists the uploaded page images in document order:

	{
	    "message": "PDF converted successfully",
	    "images": ["...page-1.png", "...page-2.png"],
	    "unique_id": "job-4711",
	    "status": "completed",
	    "pages_converted": 2,
	    "metadata": {
	        "pdf_page_count": 2,
	        "conversion_dpi": 150,
	        "image_format": "png"
	    }
	}

# Error Handling

Failures carry a stable machine-readable code that the platform adapters
map to an HTTP status:
  - Authentication failures (MISSING_TOKEN, INVALID_TOKEN, EXPIRED_TOKEN)
  - Payload problems (INVALID_PAYLOAD, VALIDATION_ERROR)
  - Source problems (NOT_FOUND, ACCESS_DENIED, TOO_LARGE, INVALID_FORMAT)
  - Conversion limits (TOO_MANY_PAGES, CONVERSION_TIMEOUT, RENDER_FAILED)
  - Upstream trouble (TIMEOUT, UPSTREAM_ERROR, PUBLISH_FAILED)

Retryable codes are flagged in the response so callers know whether to
resubmit. The webhook receives the same outcome asynchronously; webhook
delivery never changes the response.

# Configuration

The service is configured through environment variables with optional
.env files for local development. The main knobs:
  - AUTH_SECRET_NAME / AUTH_PUBLIC_KEY for token verification
  - CONVERT_DPI, CONVERT_MAX_PAGES, CONVERT_MAX_DOCUMENT_BYTES,
    CONVERT_WORKERS for the conversion pipeline
  - FETCH_*, PUBLISH_*, WEBHOOK_* for per-stage timeouts and retries
  - PLATFORM to pin the runtime (http or lambda, auto-detected otherwise)

# Deployment

The binary runs unchanged as an AWS Lambda function or a plain HTTP
server; the platform is detected from the Lambda runtime environment.
The HTTP flavor also serves /health and /metrics.

# Security

Security considerations:
  - Every request is authenticated before the payload is inspected
  - Webhook destinations are resolved and checked against internal
    address space before any conversion work starts
  - Pre-signed query strings and credentials never appear in logs
  - Document size and page count ceilings bound resource usage
*/
package main
