package errors

import "fmt"

// Common error constructors used throughout the generator

// NewUnsupportedType reports a function whose signature uses a type that
// cannot be marshalled through the sandbox
func NewUnsupportedType(function, typeSpelling, reason string) *BaseError {
	message := fmt.Sprintf("function '%s' uses unsupported type '%s': %s", function, typeSpelling, reason)
	return New(UnsupportedTypeCode, message).
		WithContext("function_name", function).
		WithContext("type", typeSpelling).
		WithContext("reason", reason).
		WithSuggestions(
			"Remove the function from the allowlist",
			"Wrap the function in a C-compatible shim that takes pointers instead",
		)
}

// NewUnresolvedDeclContext reports a declaration nested in a context that has
// no namespace path, such as a record or a function body
func NewUnresolvedDeclContext(declaration, context string) *BaseError {
	message := fmt.Sprintf("cannot resolve namespace of '%s': enclosed in %s", declaration, context)
	return New(UnresolvedDeclContextCode, message).
		WithContext("declaration", declaration).
		WithContext("context", context).
		WithSuggestions("Move the type to namespace scope")
}

// WrapIOBoundary wraps failures of the parsing front end
func WrapIOBoundary(path string, cause error) *BaseError {
	message := fmt.Sprintf("failed to parse '%s'", path)
	return Wrap(IOBoundaryCode, message, cause).
		WithContext("path", path)
}

// WrapFileSystemError wraps file system related errors
func WrapFileSystemError(operation, path string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s file '%s'", operation, path)
	return Wrap(FileSystemErrorCode, message, cause).
		WithContext("operation", operation).
		WithContext("path", path)
}

// WrapConfigurationError wraps configuration-related errors
func WrapConfigurationError(configType, operation string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s configuration '%s'", operation, configType)
	return Wrap(ConfigurationErrorCode, message, cause).
		WithContext("config_type", configType).
		WithContext("operation", operation)
}

// ConfigurationError creates a configuration error
func ConfigurationError(configType, message string) *BaseError {
	fullMessage := fmt.Sprintf("configuration error in '%s': %s", configType, message)
	return New(ConfigurationErrorCode, fullMessage).
		WithContext("config_type", configType)
}

// WrapTemplateError wraps template processing errors
func WrapTemplateError(templateName, operation string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s template '%s'", operation, templateName)
	return Wrap(GenerationErrorCode, message, cause).
		WithContext("template", templateName).
		WithContext("stage", operation)
}

// AddToMultiple adds an error to a MultipleErrors, creating it if nil
func AddToMultiple(multiple **MultipleErrors, err SapiError) {
	if *multiple == nil {
		*multiple = NewMultipleErrors()
	}
	(*multiple).Add(err)
}
