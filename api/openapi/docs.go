// Package openapi 注册 swagger 文档，由 cmd/api 匿名导入
package openapi

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["认证"],
                "summary": "用户注册",
                "parameters": [
                    {"description": "注册信息", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "注册成功", "schema": {"$ref": "#/definitions/dto.UserInfo"}},
                    "400": {"description": "请求参数无效或用户名/邮箱已被注册", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/token": {
            "post": {
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["认证"],
                "summary": "登录获取令牌",
                "parameters": [
                    {"type": "string", "description": "用户名", "name": "username", "in": "formData", "required": true},
                    {"type": "string", "description": "密码", "name": "password", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "登录成功", "schema": {"$ref": "#/definitions/dto.TokenData"}},
                    "401": {"description": "用户名或密码错误", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/users/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["用户"],
                "summary": "当前用户",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.UserInfo"}},
                    "401": {"description": "未认证", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/videos/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["视频"],
                "summary": "视频列表",
                "parameters": [
                    {"type": "integer", "default": 0, "description": "偏移", "name": "skip", "in": "query"},
                    {"type": "integer", "default": 10, "description": "数量", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.VideoInfo"}}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["视频"],
                "summary": "上传视频",
                "parameters": [
                    {"type": "string", "description": "标题", "name": "title", "in": "formData", "required": true},
                    {"type": "string", "description": "描述", "name": "description", "in": "formData"},
                    {"type": "boolean", "description": "是否私密", "name": "is_private", "in": "formData"},
                    {"type": "file", "description": "视频文件", "name": "video_file", "in": "formData", "required": true},
                    {"type": "file", "description": "缩略图", "name": "thumbnail_file", "in": "formData"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.VideoInfo"}},
                    "400": {"description": "文件类型不符或参数无效", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/videos/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["视频"],
                "summary": "视频详情",
                "parameters": [
                    {"type": "integer", "description": "视频ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.VideoInfo"}},
                    "403": {"description": "私密视频", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "视频不存在", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/search/videos": {
            "get": {
                "produces": ["application/json"],
                "tags": ["搜索"],
                "summary": "搜索视频",
                "parameters": [
                    {"type": "string", "description": "关键词", "name": "query", "in": "query"},
                    {"type": "string", "description": "上传者用户名", "name": "uploader", "in": "query"},
                    {"type": "integer", "description": "最短时长（秒）", "name": "min_duration", "in": "query"},
                    {"type": "integer", "description": "最长时长（秒）", "name": "max_duration", "in": "query"},
                    {"type": "string", "default": "created_at", "description": "排序字段", "name": "sort_by", "in": "query"},
                    {"type": "string", "default": "desc", "description": "排序方向", "name": "sort_order", "in": "query"},
                    {"type": "integer", "default": 10, "description": "数量", "name": "limit", "in": "query"},
                    {"type": "integer", "default": 0, "description": "偏移", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.VideoInfo"}}}
                }
            }
        }
    },
    "definitions": {
        "dto.RegisterRequest": {
            "type": "object",
            "required": ["email", "password", "username"],
            "properties": {
                "username": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "full_name": {"type": "string"},
                "bio": {"type": "string"}
            }
        },
        "dto.TokenData": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "token_type": {"type": "string"}
            }
        },
        "dto.UserInfo": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "username": {"type": "string"},
                "email": {"type": "string"},
                "full_name": {"type": "string"},
                "bio": {"type": "string"},
                "profile_picture": {"type": "string"},
                "banner_image": {"type": "string"},
                "created_at": {"type": "string"},
                "is_active": {"type": "boolean"}
            }
        },
        "dto.VideoInfo": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "is_private": {"type": "boolean"},
                "file_path": {"type": "string"},
                "thumbnail_path": {"type": "string"},
                "duration": {"type": "integer"},
                "views": {"type": "integer"},
                "likes_count": {"type": "integer"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"},
                "uploader_id": {"type": "integer"},
                "uploader": {"$ref": "#/definitions/dto.UserInfo"}
            }
        },
        "response.ErrorInfo": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "message": {"type": "string"},
                "type": {"type": "string"}
            }
        },
        "response.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/response.ErrorInfo"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "输入格式: Bearer {token}",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo 运行时可覆盖 Host 等字段
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "VidHub API",
	Description:      "视频分享平台 API 服务",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
