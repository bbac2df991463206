package server

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/google/uuid"

	"github.com/flipkit/imgflip-mcp/internal/logger"
	"github.com/flipkit/imgflip-mcp/pkg/imgflip"
	"github.com/flipkit/imgflip-mcp/pkg/prompts"
	"github.com/flipkit/imgflip-mcp/pkg/protocol"
	"github.com/flipkit/imgflip-mcp/pkg/tools"
	"github.com/flipkit/imgflip-mcp/pkg/transport"
)

// Server represents an MCP server
type Server struct {
	transport transport.Transport
	handlers  map[string]HandlerFunc
	tools     []protocol.Tool
	prompts   []protocol.Prompt
}

// HandlerFunc is a function that handles an MCP request
type HandlerFunc func(params interface{}) (interface{}, error)

// Singleton instance
var (
	instance *Server
	once     sync.Once
	mu       sync.Mutex
)

// InitInstance initializes the singleton instance of the Server with
// the given transport and toolkit
func InitInstance(t transport.Transport, toolkit *tools.Toolkit) *Server {
	once.Do(func() {
		instance = NewServer(t, toolkit)
	})
	return instance
}

// GetInstance returns the singleton instance of the Server
func GetInstance() *Server {
	if instance == nil {
		logger.Fatal("Server instance requested but not initialized. Use InitInstance first.")
	}
	return instance
}

// NewServer creates an unshared server, used by tests to avoid the
// process-wide singleton
func NewServer(t transport.Transport, toolkit *tools.Toolkit) *Server {
	s := &Server{
		transport: t,
		handlers:  make(map[string]HandlerFunc),
		tools:     []protocol.Tool{},
		prompts:   []protocol.Prompt{},
	}
	s.registerMemeTools(toolkit)
	s.registerPrompts()
	s.registerProtocolHandlers()
	return s
}

// RegisterTool registers a tool with the server
func (s *Server) RegisterTool(tool protocol.Tool, handler HandlerFunc) {
	mu.Lock()
	defer mu.Unlock()

	s.tools = append(s.tools, tool)
	s.handlers[tool.Name] = handler
	logger.Info("Registered tool: %s", tool.Name)
}

// GetTools returns the list of registered tools
func (s *Server) GetTools() []protocol.Tool {
	mu.Lock()
	defer mu.Unlock()
	return s.tools
}

// registerMemeTools registers the meme pipeline tools with the server
func (s *Server) registerMemeTools(toolkit *tools.Toolkit) {
	logger.Info("Registering meme tools...")

	s.RegisterTool(toolkit.SearchTemplatesTool(), toolkit.HandleSearchTemplates)
	s.RegisterTool(toolkit.TemplateInfoTool(), toolkit.HandleTemplateInfo)
	s.RegisterTool(toolkit.CreateMemeTool(), toolkit.HandleCreateMeme)
	s.RegisterTool(toolkit.SearchTermsTool(), toolkit.HandleSearchTerms)
	s.RegisterTool(toolkit.CreateFromConceptTool(), toolkit.HandleCreateFromConcept)
}

// registerPrompts loads the built-in prompts from the registry
func (s *Server) registerPrompts() {
	registry := prompts.GetGlobalRegistry()

	promptList, err := registry.ListPrompts()
	if err != nil {
		logger.Error("Failed to load prompts from registry: %v", err)
		return
	}

	mu.Lock()
	s.prompts = promptList
	mu.Unlock()

	logger.Info("Loaded %d prompts from registry", len(promptList))
}

// registerProtocolHandlers wires the built-in MCP method handlers
func (s *Server) registerProtocolHandlers() {
	s.handlers[string(protocol.MethodInitialize)] = s.handleInitialize
	s.handlers[string(protocol.MethodInitialized)] = s.handleInitialized
	s.handlers[string(protocol.MethodToolsList)] = s.handleToolsList
	s.handlers[string(protocol.MethodToolsCall)] = s.handleToolsCall
	s.handlers[string(protocol.MethodPromptsList)] = s.handlePromptsList
	s.handlers[string(protocol.MethodPromptsGet)] = s.handlePromptsGet
}

// Start starts the server and begins processing requests
func (s *Server) Start() error {
	logger.Info("Starting MCP server")

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start processing in a goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- s.ProcessRequests()
	}()

	// Wait for either an error or a signal
	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		logger.Info("Received signal: %v", sig)
		return nil
	}
}

// ProcessRequests continuously processes incoming requests
func (s *Server) ProcessRequests() error {
	for {
		// Read a request
		req, err := s.transport.ReadRequest()
		if err != nil {
			return err
		}

		// Process the request
		// if it is nil then this is not an error, it is just that no response is required
		resp := s.handleRequest(req)
		if resp == nil {
			continue
		}

		// Send the response
		if err := s.transport.WriteResponse(resp); err != nil {
			return err
		}
	}
}

// handleRequest processes a request and returns a response
func (s *Server) handleRequest(req *protocol.JsonRpcRequest) *protocol.JsonRpcResponse {
	logger.Info(">> %s", req.Method)

	// Handle notifications (no response required)
	if strings.HasPrefix(req.Method, "notifications/") {
		logger.Info("Received notification: %s", req.Method)
		return nil
	}

	// Create a base response
	resp := &protocol.JsonRpcResponse{
		JsonRPC: protocol.JsonRpcVersion,
		ID:      req.ID,
	}

	handler := s.handlers[req.Method]
	if handler == nil {
		resp.Error = &protocol.JsonRpcError{
			Code:    protocol.ErrMethodNotFound,
			Message: fmt.Sprintf("Method not found: %s", req.Method),
		}
		return resp
	}

	// Execute the handler
	result, err := handler(req.Params)

	if err == nil && result == nil {
		return nil
	}

	if err != nil {
		// Every failure goes back as a structured error carrying the
		// pipeline error kind when there is one; raw transport errors
		// never escape unstructured.
		resp.Error = &protocol.JsonRpcError{
			Code:    protocol.ErrToolExecutionFailed,
			Message: err.Error(),
		}
		if kind := imgflip.KindOf(err); kind != "" {
			resp.Error.Data = map[string]any{"kind": string(kind)}
		}
		return resp
	}

	// Set the result
	resultBytes, err := json.Marshal(result)
	if err != nil {
		resp.Error = &protocol.JsonRpcError{
			Code:    protocol.ErrInternal,
			Message: "Failed to marshal result: " + err.Error(),
		}
		return resp
	}
	resp.Result = resultBytes

	return resp
}

// handleToolsCall handles the tools/call method
func (s *Server) handleToolsCall(params any) (any, error) {
	// Parse the parameters
	type ToolCallParams struct {
		Arguments map[string]any `json:"arguments"`
		Name      string         `json:"name"`
	}

	var toolCallParams ToolCallParams

	// Convert params to JSON and then unmarshal it
	paramsBytes, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params: %v", err)
	}

	if err := json.Unmarshal(paramsBytes, &toolCallParams); err != nil {
		return nil, fmt.Errorf("invalid tools/call parameters: %v", err)
	}

	// Each invocation gets an id so its log lines can be correlated
	requestID := uuid.NewString()
	log := logger.WithFields(map[string]any{
		"request_id": requestID,
		"tool":       toolCallParams.Name,
	})
	log.Info("Tool call requested")

	handler := s.handlers[toolCallParams.Name]
	if handler == nil {
		return nil, fmt.Errorf("tool not found: %s", toolCallParams.Name)
	}

	// Execute the tool with the provided arguments
	result, err := handler(toolCallParams.Arguments)
	if err != nil {
		log.Warn(fmt.Sprintf("Tool call failed: %v", err))
		return nil, err
	}

	log.Info("Tool call completed")
	return result, nil
}

// handleToolsList handles the tools/list method
func (s *Server) handleToolsList(params interface{}) (interface{}, error) {
	logger.Info("Handling tools/list request")

	toolsResponse := struct {
		Tools []protocol.Tool `json:"tools"`
	}{
		Tools: s.tools,
	}

	return toolsResponse, nil
}

// handlePromptsList returns a list of stored prompts
func (s *Server) handlePromptsList(params interface{}) (interface{}, error) {
	logger.Info("Handling prompts/list request")

	// Create simplified prompt entries for the list response
	type PromptListEntry struct {
		Name        string                             `json:"name"`
		Description string                             `json:"description,omitempty"`
		Arguments   map[string]protocol.PromptArgument `json:"arguments,omitempty"`
	}

	var promptList []PromptListEntry
	for _, prompt := range s.prompts {
		promptList = append(promptList, PromptListEntry{
			Name:        prompt.ID, // Use ID as name for MCP compatibility
			Description: prompt.Description,
			Arguments:   prompt.Variables,
		})
	}

	promptsResponse := struct {
		Prompts []PromptListEntry `json:"prompts"`
	}{
		Prompts: promptList,
	}

	return promptsResponse, nil
}

// handlePromptsGet handles the prompts/get method
func (s *Server) handlePromptsGet(params interface{}) (interface{}, error) {
	logger.Info("Handling prompts/get request")

	// Parse the parameters to get the prompt name/ID
	type PromptsGetParams struct {
		Name      string            `json:"name"`
		Arguments map[string]string `json:"arguments,omitempty"`
	}

	var getParams PromptsGetParams

	paramsBytes, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params: %v", err)
	}

	if err := json.Unmarshal(paramsBytes, &getParams); err != nil {
		return nil, fmt.Errorf("invalid prompts/get parameters: %v", err)
	}

	registry := prompts.GetGlobalRegistry()
	prompt, err := registry.GetPrompt(getParams.Name)
	if err != nil {
		return nil, fmt.Errorf("prompt not found: %s", getParams.Name)
	}

	// Substitute any provided arguments into the template
	content := prompt.Content
	for key, value := range getParams.Arguments {
		placeholder := fmt.Sprintf("{{%s}}", key)
		content = strings.ReplaceAll(content, placeholder, value)
	}

	response := struct {
		Description string                   `json:"description"`
		Messages    []protocol.PromptMessage `json:"messages"`
	}{
		Description: prompt.Description,
		Messages: []protocol.PromptMessage{
			{
				Role: "user",
				Content: protocol.PromptContent{
					Type: "text",
					Text: content,
				},
			},
		},
	}

	return response, nil
}

// handleInitialize handles the initialize method
func (s *Server) handleInitialize(params interface{}) (interface{}, error) {
	logger.Info("Handling initialize request with %d tools and %d prompts registered", len(s.tools), len(s.prompts))

	// Echo the client's protocol version back when it sends one
	requestedProtocolVersion := "2024-11-05"

	var paramsMap map[string]interface{}
	if params != nil {
		if jsonBytes, ok := params.(json.RawMessage); ok {
			json.Unmarshal(jsonBytes, &paramsMap)
		} else if directMap, ok := params.(map[string]interface{}); ok {
			paramsMap = directMap
		}

		if version, exists := paramsMap["protocolVersion"].(string); exists {
			requestedProtocolVersion = version
		}
	}

	capabilities := map[string]any{}
	if len(s.tools) > 0 {
		capabilities["tools"] = map[string]any{
			"listChanged": true,
		}
	}
	if len(s.prompts) > 0 {
		capabilities["prompts"] = map[string]any{
			"listChanged": true,
		}
	}

	initializeResponse := struct {
		ProtocolVersion string         `json:"protocolVersion"`
		Capabilities    map[string]any `json:"capabilities"`
		ServerInfo      struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"serverInfo"`
	}{
		ProtocolVersion: requestedProtocolVersion,
		Capabilities:    capabilities,
		ServerInfo: struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		}{
			Name:    "imgflip-mcp",
			Version: "1.0.0",
		},
	}

	return initializeResponse, nil
}

// handleInitialized handles the initialized notification
// 'initialized' Does not require a response
func (s *Server) handleInitialized(params interface{}) (interface{}, error) {
	logger.Info("Handling initialized notification")
	return nil, nil
}
