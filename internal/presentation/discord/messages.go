package discordpresentation

// User-facing text. Kept in the shop's language.
const (
	msgNoPermission    = "No permiso"
	msgInvoiceNotFound = "Invoice no encontrada"
	msgOrderNotFound   = "Pedido no encontrado"
	msgNoProducts      = "No hay productos"
	msgNoVariants      = "No hay variantes"
	msgStockAvailable  = "Stock disponible: %d"
	msgItemsAdded      = "Added %d items"
	msgSelectProduct   = "Select Product"
	msgSelectVariant   = "Select Variant"
	msgSomethingFailed = "Algo salió mal, intenta de nuevo"
	labelRestockButton = "Restock"
	titleRestockModal  = "Restock"
	labelStockInput    = "Stock (1 por línea)"
	titleStockPanel    = "Stock Panel"
	titleInvoice       = "Invoice %s"
	titleOrder         = "Order %s"
	fieldEmail         = "Email"
	fieldPrice         = "Precio"
	fieldStatus        = "Estado"
	fieldProduct       = "Producto"
	fieldDeliverables  = "Keys / Deliverables"
	productLine        = "%s - ID: %s"
)

const (
	colorGreen = 0x2ecc71
	colorBlue  = 0x3498db
)

// Discord limits.
const (
	maxMessageLen        = 2000
	maxEmbedFieldValue   = 1024
	maxSelectOptions     = 25
	maxSelectOptionText  = 100
	maxDeliverablesShown = 10
)
