package i18n

// Common errors
var (
	ErrNotFound       = NewErrorWithMessage("ErrorResourceNotFound", "Resource not found", ErrorNotFound)
	ErrUnauthorized   = NewErrorWithMessage("ErrorUnauthorized", "Unauthorized", ErrorUnauthorized)
	ErrForbidden      = NewErrorWithMessage("ErrorForbidden", "Access denied", ErrorForbidden)
	ErrBadRequest     = NewErrorWithMessage("ErrorBadRequest", "Bad request", ErrorBadRequest)
	ErrInternalServer = NewErrorWithMessage("ErrorInternalServer", "Something went wrong, please try again", ErrorInternalServer)
	ErrUpstream       = NewErrorWithMessage("ErrorUpstream", "The backend service did not respond, please try again", ErrorBadGateway)
	ErrInvalidID      = NewErrorWithMessage("ErrorInvalidID", "Invalid id", ErrorBadRequest)
	ErrMissingFields  = NewErrorWithMessage("ErrorMissingFields", "Please fill in all required fields: {{.Fields}}", ErrorBadRequest)
	ErrDuplicate      = NewErrorWithMessage("ErrorDuplicate", "This record already exists", ErrorConflict)
)

// Auth and user errors
var (
	ErrorInvalidCredentials     = NewErrorWithMessage("ErrorInvalidCredentials", "Invalid email or password", ErrorUnauthorized)
	ErrorSessionExpired         = NewErrorWithMessage("ErrorSessionExpired", "Your session has expired, please log in again", ErrorUnauthorized)
	ErrorUserDisabled           = NewErrorWithMessage("ErrorUserDisabled", "This account is disabled", ErrorForbidden)
	ErrorUserNotFound           = NewErrorWithMessage("ErrorUserNotFound", "User not found", ErrorNotFound)
	ErrorUserExists             = NewErrorWithMessage("ErrorUserExists", "A user with this email or username already exists", ErrorConflict)
	ErrorRoleNotFound           = NewErrorWithMessage("ErrorRoleNotFound", "Role not found", ErrorNotFound)
	ErrorSuperAdminRequired     = NewErrorWithMessage("ErrorSuperAdminRequired", "Only a super admin can do this", ErrorForbidden)
	ErrorCannotDeleteSuperAdmin = NewErrorWithMessage("ErrorCannotDeleteSuperAdmin", "You cannot delete a Super Admin.", ErrorForbidden)
	ErrorCannotDeleteSelf       = NewErrorWithMessage("ErrorCannotDeleteSelf", "You cannot delete your own account", ErrorForbidden)
)

// Catalog errors
var (
	ErrorShopNotFound          = NewErrorWithMessage("ErrorShopNotFound", "Shop not found", ErrorNotFound)
	ErrorProductNotFound       = NewErrorWithMessage("ErrorProductNotFound", "Product not found", ErrorNotFound)
	ErrorCategoryNotFound      = NewErrorWithMessage("ErrorCategoryNotFound", "Category not found", ErrorNotFound)
	ErrorIndustryNotFound      = NewErrorWithMessage("ErrorIndustryNotFound", "Industry not found", ErrorNotFound)
	ErrorSaleTypeNotFound      = NewErrorWithMessage("ErrorSaleTypeNotFound", "Sale type not found", ErrorNotFound)
	ErrorSocialContactNotFound = NewErrorWithMessage("ErrorSocialContactNotFound", "Social contact not found", ErrorNotFound)
	ErrorForeignReference      = NewErrorWithMessage("ErrorForeignReference", "You can only use your own product types, shops, and sale types", ErrorForbidden)
	ErrorInvalidPrice          = NewErrorWithMessage("ErrorInvalidPrice", "Price and discount must be non-negative numbers", ErrorBadRequest)
	ErrorReferenceInUse        = NewErrorWithMessage("ErrorReferenceInUse", "This {{.Noun}} is still in use and cannot be deleted", ErrorConflict)
)

// Media errors
var (
	ErrorImageType     = NewErrorWithMessage("ErrorImageType", "Only JPG, PNG, and GIF files are allowed", ErrorUnsupportedMedia)
	ErrorImageTooLarge = NewErrorWithMessage("ErrorImageTooLarge", "File size must be less than 5MB", ErrorRequestTooLarge)
	ErrorImageRequired = NewErrorWithMessage("ErrorImageRequired", "Please choose an image", ErrorBadRequest)
	ErrorImageFolder   = NewErrorWithMessage("ErrorImageFolder", "Unsupported image folder", ErrorBadRequest)
	ErrorUploadFailed  = NewErrorWithMessage("ErrorUploadFailed", "Upload failed, please try again", ErrorBadGateway)
	ErrorListFailed    = NewErrorWithMessage("ErrorListFailed", "Could not load images, please try again", ErrorBadGateway)
)

// Deletion workflow errors
var (
	ErrorDeletionNotFound = NewErrorWithMessage("ErrorDeletionNotFound", "This delete request has expired or does not exist", ErrorNotFound)
	ErrorDeletionResource = NewErrorWithMessage("ErrorDeletionResource", "Unknown resource type", ErrorBadRequest)
	ErrorDeletionState    = NewErrorWithMessage("ErrorDeletionState", "This delete request was already handled", ErrorConflict)
	ErrorDeleteFailed     = NewErrorWithMessage("ErrorDeleteFailed", "Failed to delete the {{.Noun}}", ErrorBadGateway)
)

// Success message IDs
const (
	SuccessLogin            = "SuccessLogin"
	SuccessLogout           = "SuccessLogout"
	SuccessFetched          = "SuccessFetched"
	SuccessItemCreated      = "SuccessItemCreated"
	SuccessItemUpdated      = "SuccessItemUpdated"
	SuccessItemDeleted      = "SuccessItemDeleted"
	SuccessDeletionStaged   = "SuccessDeletionStaged"
	SuccessDeletionCanceled = "SuccessDeletionCanceled"
	SuccessImageUploaded    = "SuccessImageUploaded"
)
