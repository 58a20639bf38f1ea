package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg gin.IRouter) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>scholarfolio API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": {
    "title": "scholarfolio",
    "version": "v1.0.0"
  },
  "components": {
    "securitySchemes": {
      "bearer": {
        "type": "http",
        "scheme": "bearer"
      }
    },
    "schemas": {
      "PaperInput": {
        "type": "object",
        "properties": {
          "title": {
            "type": "string"
          },
          "abstract": {
            "type": "string"
          },
          "pdfUrl": {
            "type": "string"
          },
          "publishedAt": {
            "type": "string",
            "format": "date"
          }
        }
      },
      "PostInput": {
        "type": "object",
        "properties": {
          "title": {
            "type": "string"
          },
          "content": {
            "type": "string"
          },
          "excerpt": {
            "type": "string"
          },
          "tags": {
            "type": "array",
            "items": {
              "type": "string"
            }
          },
          "coverImageUrl": {
            "type": "string"
          },
          "published": {
            "type": "boolean"
          },
          "publishedAt": {
            "type": "string",
            "format": "date"
          }
        }
      },
      "TeachingInput": {
        "type": "object",
        "properties": {
          "subject": {
            "type": "string"
          },
          "institution": {
            "type": "string"
          },
          "startDate": {
            "type": "string",
            "format": "date"
          },
          "endDate": {
            "type": "string",
            "format": "date"
          }
        }
      }
    }
  },
  "paths": {
    "/api/research-papers": {
      "get": {
        "summary": "List research papers",
        "responses": {
          "200": {
            "description": "array sorted newest first"
          },
          "500": {
            "description": "store failure"
          }
        }
      },
      "post": {
        "summary": "Create research paper",
        "security": [
          {
            "bearer": []
          }
        ],
        "requestBody": {
          "content": {
            "application/json": {
              "schema": {
                "$ref": "#/components/schemas/PaperInput"
              }
            }
          }
        },
        "responses": {
          "201": {
            "description": "{message, id}"
          },
          "400": {
            "description": "required fields missing"
          },
          "401": {
            "description": "missing or invalid token"
          }
        }
      }
    },
    "/api/research-papers/{id}": {
      "get": {
        "summary": "Get by id",
        "responses": {
          "200": {
            "description": "record"
          },
          "404": {
            "description": "not found"
          }
        }
      },
      "put": {
        "summary": "Replace by id",
        "security": [
          {
            "bearer": []
          }
        ],
        "requestBody": {
          "content": {
            "application/json": {
              "schema": {
                "$ref": "#/components/schemas/PaperInput"
              }
            }
          }
        },
        "responses": {
          "200": {
            "description": "updated record"
          },
          "400": {
            "description": "invalid payload"
          },
          "404": {
            "description": "not found"
          }
        }
      },
      "delete": {
        "summary": "Delete by id",
        "security": [
          {
            "bearer": []
          }
        ],
        "responses": {
          "200": {
            "description": "{success: true}"
          },
          "404": {
            "description": "not found"
          }
        }
      }
    },
    "/api/blog-posts": {
      "get": {
        "summary": "List blog posts",
        "responses": {
          "200": {
            "description": "array sorted newest first"
          },
          "500": {
            "description": "store failure"
          }
        }
      },
      "post": {
        "summary": "Create blog post",
        "security": [
          {
            "bearer": []
          }
        ],
        "requestBody": {
          "content": {
            "application/json": {
              "schema": {
                "$ref": "#/components/schemas/PostInput"
              }
            }
          }
        },
        "responses": {
          "201": {
            "description": "{message, id}"
          },
          "400": {
            "description": "required fields missing"
          },
          "401": {
            "description": "missing or invalid token"
          }
        }
      }
    },
    "/api/blog-posts/{id}": {
      "get": {
        "summary": "Get by id",
        "responses": {
          "200": {
            "description": "record"
          },
          "404": {
            "description": "not found"
          }
        }
      },
      "put": {
        "summary": "Replace by id",
        "security": [
          {
            "bearer": []
          }
        ],
        "requestBody": {
          "content": {
            "application/json": {
              "schema": {
                "$ref": "#/components/schemas/PostInput"
              }
            }
          }
        },
        "responses": {
          "200": {
            "description": "updated record"
          },
          "400": {
            "description": "invalid payload"
          },
          "404": {
            "description": "not found"
          }
        }
      },
      "delete": {
        "summary": "Delete by id",
        "security": [
          {
            "bearer": []
          }
        ],
        "responses": {
          "200": {
            "description": "{success: true}"
          },
          "404": {
            "description": "not found"
          }
        }
      }
    },
    "/api/teaching-experiences": {
      "get": {
        "summary": "List teaching experiences",
        "responses": {
          "200": {
            "description": "array sorted newest first"
          },
          "500": {
            "description": "store failure"
          }
        }
      },
      "post": {
        "summary": "Create teaching experience",
        "security": [
          {
            "bearer": []
          }
        ],
        "requestBody": {
          "content": {
            "application/json": {
              "schema": {
                "$ref": "#/components/schemas/TeachingInput"
              }
            }
          }
        },
        "responses": {
          "201": {
            "description": "{message, id}"
          },
          "400": {
            "description": "required fields missing"
          },
          "401": {
            "description": "missing or invalid token"
          }
        }
      }
    },
    "/api/teaching-experiences/{id}": {
      "get": {
        "summary": "Get by id",
        "responses": {
          "200": {
            "description": "record"
          },
          "404": {
            "description": "not found"
          }
        }
      },
      "put": {
        "summary": "Replace by id",
        "security": [
          {
            "bearer": []
          }
        ],
        "requestBody": {
          "content": {
            "application/json": {
              "schema": {
                "$ref": "#/components/schemas/TeachingInput"
              }
            }
          }
        },
        "responses": {
          "200": {
            "description": "updated record"
          },
          "400": {
            "description": "invalid payload"
          },
          "404": {
            "description": "not found"
          }
        }
      },
      "delete": {
        "summary": "Delete by id",
        "security": [
          {
            "bearer": []
          }
        ],
        "responses": {
          "200": {
            "description": "{success: true}"
          },
          "404": {
            "description": "not found"
          }
        }
      }
    },
    "/api/uploads": {
      "post": {
        "summary": "Upload an attachment",
        "security": [
          {
            "bearer": []
          }
        ],
        "requestBody": {
          "content": {
            "multipart/form-data": {
              "schema": {
                "type": "object",
                "properties": {
                  "file": {
                    "type": "string",
                    "format": "binary"
                  },
                  "bucketName": {
                    "type": "string"
                  },
                  "folderPath": {
                    "type": "string"
                  },
                  "maxFileSize": {
                    "type": "integer"
                  },
                  "accept": {
                    "type": "string"
                  }
                }
              }
            }
          }
        },
        "responses": {
          "200": {
            "description": "{success: true, url}"
          },
          "400": {
            "description": "{success: false, error}"
          }
        }
      }
    },
    "/api/tokens/revoke": {
      "post": {
        "summary": "Revoke the caller's token",
        "security": [
          {
            "bearer": []
          }
        ],
        "responses": {
          "200": {
            "description": "revoked"
          },
          "503": {
            "description": "revocation not configured"
          }
        }
      }
    },
    "/health": {
      "get": {
        "summary": "Liveness check",
        "responses": {
          "200": {
            "description": "healthy"
          }
        }
      }
    },
    "/ready": {
      "get": {
        "summary": "Readiness check",
        "responses": {
          "200": {
            "description": "ready"
          },
          "503": {
            "description": "not ready"
          }
        }
      }
    },
    "/metrics": {
      "get": {
        "summary": "Prometheus metrics",
        "responses": {
          "200": {
            "description": "text exposition"
          }
        }
      }
    }
  }
}`
