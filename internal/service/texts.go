package service

// Callback data understood by HandleCallback.
const (
	CallbackMenu             = "menu"
	CallbackOrderInfo        = "pedido"
	CallbackOthers           = "otros"
	CallbackExit             = "salir"
	CallbackDeliveryTime     = "tiempo_pedido"
	CallbackMostOrdered      = "producto_mas_pedido"
	CallbackWrongOrder       = "orden_mal"
	CallbackAppDoesNotOpen   = "app_no_abre"
	CallbackInfoProvided     = "info_proporcionada"
	CallbackReturnStart      = "return_start"
	CallbackReturnOthers     = "return_otros"
	CallbackReturnCategories = "return_categories"

	CallbackCategoryPrefix  = "category_"
	CallbackProductPrefix   = "product_"
	CallbackSeparatorPrefix = "separator_"
)

// Session and rating flow.
const (
	textRestart        = "La sesión ha terminado. Para empezar de nuevo, escribe /start."
	textRatingPrompt   = "Califica nuestro sistema y tu experiencia:\n1. ⭐️\n2. ⭐️⭐️\n3. ⭐️⭐️⭐️\n4. ⭐️⭐️⭐️⭐️\n5. ⭐️⭐️⭐️⭐️⭐️"
	textInvalidRating  = "Lo siento, este no es un valor válido para calificarnos."
	textCommentPrompt  = "Gracias, ahora por favor procede a enviarnos un comentario para decirnos en qué mejorar:"
	textFeedbackFailed = "Lo siento, hubo un error al guardar tu calificación. Inténtalo más tarde."
	textFeedbackThanks = "Gracias, tus comentarios nos ayudan a mejorar nuestra atención a los clientes."
	textFarewell       = "Gracias por preferirnos. ¡Hasta pronto 👋! Recuerda que para volver a ingresar puedes presionar el botón de este enlace para ejecutar el comando /start.👈"
	textApology        = "Lo siento, algo salió mal al procesar tu solicitud."
)

// Start screen and FAQ.
const (
	textGreetingFmt      = "%s %s, soy %s 🤖, el asistente virtual de %s. Puedes escribirme lo que necesites o usar los botones de abajo."
	textSmallTalkFmt     = "¡Hola, bienvenido a %s! ¿Cómo puedo ayudarte hoy?"
	textMainMenu         = "¿En qué te puedo ayudar? Elige una opción:"
	textOrderInfo        = "Todos los pedidos se realizan a través de la mini App 📱: elige tus productos, indica la cantidad y confirma tu orden. La confirmación te llegará por este chat."
	textOtherQuestions   = "Estas son las preguntas más frecuentes sobre el bot:"
	textDeliveryTime     = "El tiempo de preparación depende de la demanda del momento; normalmente tu pedido está listo entre 15 y 30 minutos. ⏳"
	textWrongOrder       = "Si te equivocaste en una orden, comunícate con el personal del local lo antes posible para corregirla antes de que se prepare."
	textAppDoesNotOpen   = "Si la mini App no abre, revisa tu conexión a internet, actualiza Telegram y vuelve a intentarlo. Si el problema continúa, escribe /start."
	textInfoProvided     = "Los productos, precios y cantidades que te muestro salen directamente del menú del local. Las respuestas a preguntas generales son solo orientativas."
	buttonMenu           = "Cuál es el menú de hoy 📋"
	buttonOrderInfo      = "Cómo puedo realizar un pedido 📑❓"
	buttonOthers         = "Preguntas acerca del Bot 🤖⁉"
	buttonExit           = "Salir 🚪"
	buttonDeliveryTime   = "¿Cuánto tiempo demora en llegar mi pedido? ⏳"
	buttonMostOrdered    = "¿Cuál es el producto más pedido de este establecimiento? 📊"
	buttonWrongOrder     = "Puse mal una orden ¿Qué puedo hacer? 😬❓"
	buttonAppDoesNotOpen = "El aplicativo no abre. 😖"
	buttonInfoProvided   = "Sobre la información Proporcionada 🤔:"
	buttonReturnStart    = "Regresar al Inicio ↩"
	buttonReturnOthers   = "Regresar a las Preguntas ↩"
	buttonReturnCats     = "Regresar a Categorías ↩"
	buttonSoups          = "Sopas 🥘"
	buttonSeconds        = "Segundos 🍛"
)

// Catalog replies.
const (
	textNoCategories          = "No hay categorías disponibles."
	textSelectCategory        = "Selecciona una categoría:"
	textSelectProduct         = "Selecciona un producto:"
	textNoProductsInCategory  = "No hay productos disponibles en esta categoría."
	textCategoryProductsFmt   = "Tenemos %d '%s' para ofrecerte:"
	textLunchHeader           = "De Almuerzos tenemos lo siguiente:"
	textNoLunch               = "No hay productos disponibles en la categoría de almuerzos."
	textMostOrderedFmt        = "El producto más pedido o popular de este negocio es %s a un precio de $%s."
	textNoMostOrdered         = "No se encontró información sobre el producto más pedido."
	textMainCombinationFmt    = "Te ofrecemos unos de nuestros almuerzos mas populares:\n- Como entrada tenemos %s con %d ventas a un precio de $%s.\n- Y te ofrecemos de segundo: %s con %d ventas a un precio de $%s."
	textNoMainCombination     = "No se encontró información sobre el plato más vendido."
	textNoProductByName       = "No disponemos de productos con ese nombre."
	textMatchesFmt            = "Encontramos %d productos que coinciden con '%s':\n"
	textMiniAppReminder       = "\n Recuerda todos los pedidos se hacen a través de la mini App 👀\n"
	textInvalidQuantity       = "La cantidad solicitada debe ser un número positivo mayor que 0."
	textPriceFmt              = "El precio del producto %s es de $%s."
	textStockFmt              = "La cantidad del producto %s es de %d unidades."
	textStockUntracked        = "El producto '%s' no tiene una cantidad asignada."
	textStockUntrackedLine    = "Estos productos son para preparar, no tienen cantidad específica."
	textOrderUntrackedFmt     = "El producto '%s' no tiene una cantidad asignada porque la categoría del producto no está considerada para tener un stock. Revise el menú para más información."
	textOrderUntrackedLineFmt = "- %s: No tiene una cantidad asignada porque la categoría del producto no está considerada para tener stock. Revise el menú para más información.\n"
	textOrderShortFmt         = "No hay suficientes unidades para el producto '%s'. Solo quedan %d unidades."
	textOrderShortLineFmt     = "- %s: Solo quedan %d unidades. No hay suficientes unidades para tu pedido.\n"
	textOrderOKFmt            = "La cantidad del producto %s es de %d unidades. Con tu compra quedarían %d unidades."
	textOrderOKLineFmt        = "- %s: %d unidades disponibles. Con tu compra quedarían %d unidades.\n"
)
